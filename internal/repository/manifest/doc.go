// Package manifest persists the release manifest: the list of packages a
// pipeline run built, with their sizes and digests. The publish command reads
// it back to push a previous build.
package manifest
