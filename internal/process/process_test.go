package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNew splits a program prefix from its arguments.
func TestNew(t *testing.T) {
	t.Parallel()

	cmd := New([]string{"bundle", "exec", "fpm"}, "-f", "-s", "dir")
	require.Equal(t, "bundle", cmd.Program)
	require.Equal(t, []string{"exec", "fpm", "-f", "-s", "dir"}, cmd.Args)
	require.Equal(t, []string{"bundle", "exec", "fpm", "-f", "-s", "dir"}, cmd.Argv())

	require.Empty(t, New(nil, "x").Program)
}

// TestString quotes only the arguments a shell would mangle.
func TestString(t *testing.T) {
	t.Parallel()

	cmd := Command{
		Program: "fpm",
		Args:    []string{"-p", "releases/a_1.0_amd64.deb", "--vendor", "App Canary", "", "it's", "bin=/usr/sbin/x"},
	}

	require.Equal(t, `fpm -p releases/a_1.0_amd64.deb --vendor 'App Canary' '' 'it'\''s' bin=/usr/sbin/x`, cmd.String())
}

// TestExecRunner_StreamsOutput runs a real child and checks output reaches the writers.
func TestExecRunner_StreamsOutput(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var stdout, stderr bytes.Buffer

	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "echo out; echo err >&2"}})
	require.NoError(t, err)
	require.Equal(t, "out\n", stdout.String())
	require.Equal(t, "err\n", stderr.String())
}

// TestExecRunner_ExitError reports the exit status of a failing child.
func TestExecRunner_ExitError(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "exit 3"}})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "sh", exitErr.Command.Program)
}

// TestExecRunner_Timeout stops a child that outlives its timeout.
func TestExecRunner_Timeout(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	start := time.Now()
	err := r.Run(context.Background(), Command{Program: "sleep", Args: []string{"5"}, Timeout: 50 * time.Millisecond})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 4*time.Second)
}

// TestExecRunner_Errors covers an empty command and a missing program.
func TestExecRunner_Errors(t *testing.T) {
	t.Parallel()

	r := NewExecRunner()

	require.ErrorIs(t, r.Run(context.Background(), Command{}), ErrEmptyCommand)

	err := r.Run(context.Background(), Command{Program: "definitely-not-a-real-program-xyz"})
	require.Error(t, err)

	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}
