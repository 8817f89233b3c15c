package publisher

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/multierr"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/domain/recipe"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/process"
)

// Options configures a Publisher.
type Options struct {
	// Command is the push program prefix, e.g. bundle exec package_cloud push.
	Command []string
	// Account and Repository select the package host repository.
	Account    string
	Repository string
	// Timeout bounds each push.
	Timeout time.Duration
	// Root is the working directory package paths are relative to.
	Root string
}

// Error is a failed push of one package.
type Error struct {
	Distro  string
	Release string
	Arch    string
	Path    string
	Command process.Command
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("publish %s/%s/%s (%s): %v; command: %s", e.Distro, e.Release, e.Arch, e.Path, e.Err, e.Command)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Publisher pushes packages to the package host through its CLI.
type Publisher struct {
	runner process.Runner
	opts   Options
}

// New creates a Publisher running commands through runner.
func New(runner process.Runner, opts Options) *Publisher {
	return &Publisher{
		runner: runner,
		opts:   opts,
	}
}

// Target returns the <account>/<repo>/<distro>/<release> push target for pkg.
func (p *Publisher) Target(pkg *build.Package) string {
	distro := pkg.HostingDistro
	if distro == "" {
		distro = recipe.HostingName(pkg.Distro)
	}

	return path.Join(p.opts.Account, p.opts.Repository, distro, pkg.Release)
}

// Command returns the command that pushes pkg.
func (p *Publisher) Command(pkg *build.Package) process.Command {
	cmd := process.New(p.opts.Command, p.Target(pkg), pkg.Path)
	cmd.Dir = p.opts.Root
	cmd.Timeout = p.opts.Timeout

	return cmd
}

// Push publishes one package. Failures are returned as *Error.
func (p *Publisher) Push(ctx context.Context, pkg *build.Package) error {
	cmd := p.Command(pkg)

	logger.InfoKV(ctx, "Publishing package", "package", pkg.Label(), "target", p.Target(pkg))

	if err := p.runner.Run(ctx, cmd); err != nil {
		return &Error{
			Distro:  pkg.Distro,
			Release: pkg.Release,
			Arch:    pkg.Arch,
			Path:    pkg.Path,
			Command: cmd,
			Err:     err,
		}
	}

	return nil
}

// PushAll pushes every package in order, continuing past failures, and
// returns the combined errors. It stops early only if ctx is done.
func (p *Publisher) PushAll(ctx context.Context, pkgs []*build.Package) error {
	var errs error

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		if err := p.Push(ctx, pkg); err != nil {
			logger.ErrorKV(ctx, "Publish failed", "package", pkg.Label(), "error", err)
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
