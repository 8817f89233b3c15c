package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestContextLogger checks that WithName and WithKV decorate the logger stored in the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "build")
	ctx = WithKV(ctx, "distro", "ubuntu")

	InfoKV(ctx, "Built package", "arch", "amd64")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "build", entries[0].LoggerName)
	require.Equal(t, "Built package", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "ubuntu", fields["distro"])
	require.Equal(t, "amd64", fields["arch"])
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, global, FromContext(context.Background()))
}

// TestSetLevelNameRejectsUnknown ensures bad level names surface ErrUnknownLevel.
func TestSetLevelNameRejectsUnknown(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, SetLevelName("loud"), ErrUnknownLevel)
}
