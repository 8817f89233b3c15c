// Package recipe holds the registry of distro recipes.
//
// The built-in declarations live in Builtin; extra recipes from the
// configuration file are appended. The Registry is validated once at
// construction and hands out copies afterwards.
package recipe
