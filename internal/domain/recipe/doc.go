// Package recipe holds the declarative description of a distro family:
// releases, package format, config-file mapping and lifecycle hooks, plus the
// distro naming used by the package host.
package recipe
