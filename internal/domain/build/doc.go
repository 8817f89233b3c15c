// Package build expands recipes into build units and renders the fpm
// command for each unit.
//
// Resolve produces one Unit per (release, architecture) pair in a stable
// order. FormatCommand is a pure function of a Unit. Package is the record a
// successful build leaves behind for the verifier and publisher.
package build
