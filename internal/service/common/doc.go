// Package common holds helpers shared by the pipeline commands.
//
// It detects the current system actor (hostname/username) for the release
// manifest and guards the releases directory with a run lock so two
// pipelines never write the same artifacts.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
