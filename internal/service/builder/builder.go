package builder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/process"
)

// Options configures a Builder.
type Options struct {
	// Command is the builder program prefix, e.g. bundle exec fpm.
	Command []string
	// Timeout bounds each build.
	Timeout time.Duration
	// Root is the layout root and the builder's working directory.
	Root string
}

// Builder turns build units into packages by running fpm.
type Builder struct {
	runner process.Runner
	opts   Options
	layout build.Layout
}

// New creates a Builder running commands through runner.
func New(runner process.Runner, opts Options) *Builder {
	return &Builder{
		runner: runner,
		opts:   opts,
		layout: build.Layout{Root: opts.Root},
	}
}

// Command returns the full command that builds u.
func (b *Builder) Command(u *build.Unit) process.Command {
	cmd := process.New(b.opts.Command, build.FormatCommand(u)...)
	cmd.Dir = b.opts.Root
	cmd.Timeout = b.opts.Timeout

	return cmd
}

// Build runs the builder for u and checks the artifact it leaves behind.
// Any failure is returned as *Error.
func (b *Builder) Build(ctx context.Context, u *build.Unit) (*build.Package, error) {
	ctx = logger.WithKV(ctx, "unit", u.Label())
	cmd := b.Command(u)

	if err := b.prepare(u); err != nil {
		return nil, newError(u, cmd, err)
	}

	logger.InfoKV(ctx, "Building package", "command", cmd.String())

	started := time.Now()

	if err := b.runner.Run(ctx, cmd); err != nil {
		return nil, newError(u, cmd, err)
	}

	pkg := build.NewPackage(u)

	if err := b.inspect(pkg); err != nil {
		return nil, newError(u, cmd, err)
	}

	logger.InfoKV(ctx, "Built package",
		"path", pkg.Path,
		"size", humanize.Bytes(uint64(pkg.Size)), //nolint:gosec // Size comes from Stat and is never negative.
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return pkg, nil
}

// prepare checks every input of u and clears the previous artifact, so a
// builder that exits 0 without output cannot pass for a successful build.
func (b *Builder) prepare(u *build.Unit) error {
	if err := b.requireDir(u.FilesDir); err != nil {
		return err
	}

	paths := make([]string, 0, 1+len(u.Hooks)+len(u.ConfigFiles))
	paths = append(paths, u.Binary.Path)

	for _, h := range u.Hooks {
		paths = append(paths, h.Path)
	}

	for _, cf := range u.ConfigFiles {
		paths = append(paths, cf.Path)
	}

	for _, p := range paths {
		if err := b.requireFile(p); err != nil {
			return err
		}
	}

	out := b.layout.Join(u.OutputPath)

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous artifact: %w", err)
	}

	return nil
}

func (b *Builder) requireDir(p string) error {
	info, err := os.Stat(b.layout.Join(p))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInputMissing, p, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputMissing, p)
	}

	return nil
}

func (b *Builder) requireFile(p string) error {
	info, err := os.Stat(b.layout.Join(p))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInputMissing, p, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputMissing, p)
	}

	return nil
}

// inspect fills Size and Digest from the artifact on disk.
func (b *Builder) inspect(pkg *build.Package) error {
	path := b.layout.Join(pkg.Path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, pkg.Path)
		}

		return fmt.Errorf("stat artifact: %w", err)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrArtifactEmpty, pkg.Path)
	}

	digest, err := Digest(path)
	if err != nil {
		return err
	}

	pkg.Size = info.Size()
	pkg.Digest = digest

	return nil
}

// Digest returns the base64 blake3 digest of the file at path.
func Digest(path string) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := blake3.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}
