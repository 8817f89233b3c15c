package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyCommand is returned for a command without a program.
var ErrEmptyCommand = errors.New("empty command")

// Command is an argv to execute without a shell.
type Command struct {
	// Program is the executable, resolved through PATH.
	Program string
	// Args follow the program.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Timeout bounds the run; zero means no limit.
	Timeout time.Duration
}

// New builds a Command from a program prefix (e.g. bundle exec fpm) and arguments.
func New(prefix []string, args ...string) Command {
	if len(prefix) == 0 {
		return Command{Args: args}
	}

	all := make([]string, 0, len(prefix)-1+len(args))
	all = append(all, prefix[1:]...)
	all = append(all, args...)

	return Command{
		Program: prefix[0],
		Args:    all,
	}
}

// Argv returns program and arguments as one slice.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String renders the command for display, quoting arguments a POSIX shell
// would split or expand.
func (c Command) String() string {
	quoted := make([]string, 0, len(c.Args)+1)
	for _, arg := range c.Argv() {
		quoted = append(quoted, quote(arg))
	}

	return strings.Join(quoted, " ")
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command Command
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command.Program, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes, copying their output to
// Stdout and Stderr as it is produced.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts cmd and blocks until it exits or ctx is done.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if cmd.Program == "" {
		return ErrEmptyCommand
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	//nolint:gosec // Commands are assembled from configuration, never from a shell string.
	child := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	child.Dir = cmd.Dir
	child.Stdout = r.Stdout
	child.Stderr = r.Stderr

	err := child.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", cmd.Program, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: cmd, Code: exitErr.ExitCode(), Err: err}
	}

	return fmt.Errorf("start %s: %w", cmd.Program, err)
}

// quote wraps s in single quotes unless it only holds characters no POSIX
// shell treats specially.
func quote(s string) string {
	if s == "" {
		return "''"
	}

	safe := true

	for _, c := range s {
		if !isSafe(c) {
			safe = false

			break
		}
	}

	if safe {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	default:
		return strings.ContainsRune("-_./=+:,@%~", c)
	}
}
