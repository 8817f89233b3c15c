// Package process runs external tools as argv lists, never through a shell,
// streaming their output as it arrives. Command.String gives the same argv in
// a copy-pasteable form for logs and error messages.
package process
