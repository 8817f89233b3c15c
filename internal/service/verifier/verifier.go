package verifier

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/process"
)

// ErrUnknownFormat is returned for artifacts that are neither .deb nor .rpm.
var ErrUnknownFormat = errors.New("unknown package format")

// Options configures a Verifier.
type Options struct {
	// Command is the container CLI, e.g. docker.
	Command []string
	// Arches lists the architectures the container host can install.
	Arches []string
	// ReleasesDir is the absolute host path of the releases directory.
	ReleasesDir string
	// Mount is where ReleasesDir appears inside the container.
	Mount string
	// Timeout bounds each container run.
	Timeout time.Duration
}

// Verifier installs packages into a clean container of their distro release.
type Verifier struct {
	runner process.Runner
	opts   Options
}

// New creates a Verifier running commands through runner.
func New(runner process.Runner, opts Options) *Verifier {
	return &Verifier{
		runner: runner,
		opts:   opts,
	}
}

// Applies reports whether pkg should be smoke-tested.
func (v *Verifier) Applies(pkg *build.Package) bool {
	return !pkg.SkipVerify && slices.Contains(v.opts.Arches, pkg.Arch)
}

// Image returns the container image for pkg's distro release.
func Image(pkg *build.Package) string {
	return pkg.Distro + ":" + pkg.Release
}

// Command returns the container run that installs pkg.
func (v *Verifier) Command(pkg *build.Package) (process.Command, error) {
	inside := path.Join(v.opts.Mount, filepath.Base(pkg.Path))

	var install []string

	switch filepath.Ext(pkg.Path) {
	case ".deb":
		install = []string{"dpkg", "-i", inside}
	case ".rpm":
		install = []string{"rpm", "-i", inside}
	default:
		return process.Command{}, fmt.Errorf("%w: %s", ErrUnknownFormat, pkg.Path)
	}

	args := make([]string, 0, 6+len(install))
	args = append(args, "run", "--rm", "-v", v.opts.ReleasesDir+":"+v.opts.Mount+":ro", Image(pkg))
	args = append(args, install...)

	cmd := process.New(v.opts.Command, args...)
	cmd.Timeout = v.opts.Timeout

	return cmd, nil
}

// Verify installs pkg in a container.
func (v *Verifier) Verify(ctx context.Context, pkg *build.Package) error {
	cmd, err := v.Command(pkg)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Verifying package", "package", pkg.Label(), "image", Image(pkg))

	if err = v.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("verify %s: %w; command: %s", pkg.Label(), err, cmd)
	}

	return nil
}

// VerifyAll verifies every applicable package, continuing past failures.
// It returns the packages that passed and the combined errors.
func (v *Verifier) VerifyAll(ctx context.Context, pkgs []*build.Package) ([]*build.Package, error) {
	var (
		passed []*build.Package
		errs   error
	)

	for _, pkg := range pkgs {
		if !v.Applies(pkg) {
			logger.DebugKV(ctx, "Skipping verification", "package", pkg.Label())
			passed = append(passed, pkg)

			continue
		}

		if err := ctx.Err(); err != nil {
			return passed, multierr.Append(errs, err)
		}

		if err := v.Verify(ctx, pkg); err != nil {
			logger.ErrorKV(ctx, "Verification failed", "package", pkg.Label(), "error", err)
			errs = multierr.Append(errs, err)

			continue
		}

		passed = append(passed, pkg)
	}

	return passed, errs
}
