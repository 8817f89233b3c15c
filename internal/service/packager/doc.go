// Package packager drives the release pipeline.
//
// Build expands the selected recipes into build units, builds each one with
// fpm, records the produced packages in a manifest next to the artifacts and
// optionally smoke-tests and publishes them. Publish pushes the packages of
// an earlier manifest. Plan prints the builder commands without running
// them, and ListRecipes prints the registry.
package packager
