package packager

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/service/common"
)

// ErrNothingToPublish is returned when the manifest has no package for the selected recipes.
var ErrNothingToPublish = errors.New("no packages to publish")

// Publish pushes the packages recorded in the manifest of opts.Version.
func Publish(ctx context.Context, opts *Options) (err error) {
	ctx = logger.WithName(ctx, "publish")

	p, err := newPipeline(ctx, opts)
	if err != nil {
		return err
	}

	version, err := p.version()
	if err != nil {
		return err
	}

	names, err := p.selectedNames()
	if err != nil {
		return err
	}

	lock, err := common.AcquireLock(ctx, p.cfg.ReleasesPath())
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, lock.Release())
	}()

	m, err := p.manifests.Load(ctx, version)
	if err != nil {
		return err
	}

	pkgs := make([]*build.Package, 0, len(m.Packages))

	for _, pkg := range m.Packages {
		if _, ok := names[pkg.Recipe]; ok {
			pkgs = append(pkgs, pkg)
		}
	}

	if len(pkgs) == 0 {
		return fmt.Errorf("%w: version %s", ErrNothingToPublish, version)
	}

	logger.InfoKV(ctx, "Publishing packages", "version", version, "run_id", m.RunID, "packages", len(pkgs))

	return p.publisher().PushAll(ctx, pkgs)
}
