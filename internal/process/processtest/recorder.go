// Package processtest provides a process.Runner fake for tests.
package processtest

import (
	"context"
	"sync"

	"github.com/appcanary/packager/internal/process"
)

// Recorder records every command it is asked to run. OnRun, when set,
// decides the outcome of each command.
type Recorder struct {
	OnRun func(cmd process.Command) error

	mu       sync.Mutex
	commands []process.Command
}

// Run records cmd and returns the result of OnRun.
func (r *Recorder) Run(ctx context.Context, cmd process.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.OnRun == nil {
		return nil
	}

	return r.OnRun(cmd)
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]process.Command(nil), r.commands...)
}

// Argvs returns the recorded commands as argv slices.
func (r *Recorder) Argvs() [][]string {
	cmds := r.Commands()

	out := make([][]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Argv())
	}

	return out
}

// Fail returns an exit error with the given code for cmd.
func Fail(cmd process.Command, code int) error {
	return &process.ExitError{Command: cmd, Code: code}
}
