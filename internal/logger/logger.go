package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// global is the shared logger instance used throughout the pipeline.
	//nolint:gochecknoglobals // Logger is used all over the project, so it's okay.
	global *zap.SugaredLogger
	// level is the minimum level shared by every logger created through New.
	//nolint:gochecknoglobals // The CLI flips the level after the logger is built.
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// ErrUnknownLevel is returned by SetLevelName for unrecognised level names.
var ErrUnknownLevel = errors.New("unknown log level")

func init() { //nolint:gochecknoinits // Packages log before the CLI has parsed flags.
	SetLogger(New(level))
}

// New creates a console logger writing to stderr, leaving stdout to the
// subprocesses whose output is streamed to the operator.
func New(enabler zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if enabler == nil {
		enabler = level
	}

	//nolint:exhaustruct // Default encoder values are fine.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)

	return zap.New(core, options...).Sugar()
}

// ParseLogLevel converts a level name to a zap level.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// SetLogger replaces the global logger. Not safe for concurrent use.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// SetLevel changes the level of the global logger.
func SetLevel(lvl zapcore.Level) {
	//nolint:errcheck // Sync on a terminal returns spurious errors.
	defer global.Sync()

	level.SetLevel(lvl)
}

// SetLevelName parses name and applies it to the global logger.
func SetLevelName(name string) error {
	lvl, ok := ParseLogLevel(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}

	SetLevel(lvl)

	return nil
}
