// Package verifier smoke-tests packages by installing each one with dpkg or
// rpm inside a throwaway container of its distro release. Recipes flagged
// skip_verify and architectures the container host cannot run are skipped.
package verifier
