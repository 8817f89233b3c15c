package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/appcanary/packager/internal/config"
	"github.com/appcanary/packager/internal/domain/build"
	domain "github.com/appcanary/packager/internal/domain/recipe"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/process"
	"github.com/appcanary/packager/internal/repository/manifest"
	"github.com/appcanary/packager/internal/repository/recipe"
	"github.com/appcanary/packager/internal/service/builder"
	"github.com/appcanary/packager/internal/service/publisher"
	"github.com/appcanary/packager/internal/service/verifier"
)

// StampLayout formats the date appended to the version by --stamp.
const StampLayout = "20060102"

// Options contains inputs for the packager entry points.
type Options struct {
	// ConfigPath is an optional path to the configuration file.
	ConfigPath string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Version is the package version; with Stamp a date suffix is appended.
	Version string
	// Stamp appends -YYYYMMDD to Version.
	Stamp bool
	// Recipes limits the run to these recipe names; empty selects all.
	Recipes []string
	// Jobs overrides the configured parallelism when positive.
	Jobs int
	// FailFast stops the build after the first failed unit.
	FailFast bool
	// Publish pushes built packages.
	Publish bool
	// Verify smoke-tests built packages before publishing.
	Verify bool

	// Out receives plan and recipe listings; defaults to stdout.
	Out io.Writer
	// Runner executes external tools; defaults to process.NewExecRunner.
	Runner process.Runner
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// pipeline holds the collaborators shared by every entry point.
type pipeline struct {
	opts      *Options
	cfg       *config.Config
	registry  recipe.Repository
	manifests manifest.Repository
	runner    process.Runner
	out       io.Writer
	now       func() time.Time
}

func newPipeline(ctx context.Context, opts *Options) (*pipeline, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	if err = logger.SetLevelName(level); err != nil {
		return nil, err
	}

	registry, err := recipe.NewDefaultRegistry(cfg.Recipes...)
	if err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}

	p := &pipeline{
		opts:      opts,
		cfg:       cfg,
		registry:  registry,
		manifests: manifest.NewFileRepository(cfg.ReleasesPath()),
		runner:    opts.Runner,
		out:       opts.Out,
		now:       opts.Now,
	}

	if p.runner == nil {
		p.runner = process.NewExecRunner()
	}

	if p.out == nil {
		p.out = os.Stdout
	}

	if p.now == nil {
		p.now = time.Now
	}

	logger.DebugKV(ctx, "Loaded configuration",
		"root", cfg.Layout.Root,
		"recipes", registry.Len(),
		"jobs", p.jobs(),
	)

	return p, nil
}

// version returns the effective package version.
func (p *pipeline) version() (string, error) {
	v := p.opts.Version
	if p.opts.Stamp {
		v += "-" + p.now().Format(StampLayout)
	}

	if err := build.ValidateVersion(v); err != nil {
		return "", err
	}

	return v, nil
}

func (p *pipeline) jobs() int {
	if p.opts.Jobs > 0 {
		return p.opts.Jobs
	}

	return p.cfg.Jobs
}

// resolve expands every selected recipe. Nothing runs when any recipe fails.
func (p *pipeline) resolve(version string) ([]build.Unit, error) {
	selected, err := p.registry.Select(p.opts.Recipes)
	if err != nil {
		return nil, err
	}

	var units []build.Unit

	for i := range selected {
		resolved, err := build.Resolve(&selected[i], version, p.cfg.BuildLayout(), p.cfg.Metadata())
		if err != nil {
			return nil, err
		}

		units = append(units, resolved...)
	}

	return units, nil
}

// selectedNames returns the recipe names a run is limited to.
func (p *pipeline) selectedNames() (map[string]struct{}, error) {
	selected, err := p.registry.Select(p.opts.Recipes)
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(selected))
	for i := range selected {
		names[selected[i].Key()] = struct{}{}
	}

	return names, nil
}

func (p *pipeline) builder() *builder.Builder {
	return builder.New(p.runner, builder.Options{
		Command: p.cfg.Builder.Command,
		Timeout: p.cfg.Builder.Timeout,
		Root:    p.cfg.Layout.Root,
	})
}

func (p *pipeline) publisher() *publisher.Publisher {
	return publisher.New(p.runner, publisher.Options{
		Command:    p.cfg.Publisher.Command,
		Account:    p.cfg.Publisher.Account,
		Repository: p.cfg.Publisher.Repository,
		Timeout:    p.cfg.Publisher.Timeout,
		Root:       p.cfg.Layout.Root,
	})
}

func (p *pipeline) verifier() (*verifier.Verifier, error) {
	releases, err := filepath.Abs(p.cfg.ReleasesPath())
	if err != nil {
		return nil, fmt.Errorf("releases dir: %w", err)
	}

	return verifier.New(p.runner, verifier.Options{
		Command:     p.cfg.Verifier.Command,
		Arches:      p.cfg.Verifier.Arches,
		ReleasesDir: releases,
		Mount:       p.cfg.Verifier.Mount,
		Timeout:     p.cfg.Verifier.Timeout,
	}), nil
}

// recipes returns every registered recipe in registry order.
func (p *pipeline) recipes() []domain.Recipe {
	return p.registry.All()
}
