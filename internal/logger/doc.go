// Package logger wraps zap for the packaging pipeline:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - key/value helpers (DebugKV, InfoKV, WarnKV, ErrorKV).
//
// Stdout is left to the external tools whose output the pipeline streams.
package logger
