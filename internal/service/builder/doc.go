// Package builder runs fpm for one build unit at a time.
//
// Before running it checks that the binary, files directory, hook scripts and
// config templates exist. After a clean exit it requires a non-empty artifact
// at the expected path and records its size and blake3 digest.
package builder
