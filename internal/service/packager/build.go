package packager

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/appcanary/packager/internal/domain/build"
	"github.com/appcanary/packager/internal/logger"
	"github.com/appcanary/packager/internal/repository/manifest"
	"github.com/appcanary/packager/internal/service/common"
)

// ErrNoUnits is returned when the selected recipes expand to nothing.
var ErrNoUnits = errors.New("nothing to build")

// Build runs the full pipeline: resolve, build, record the manifest and
// optionally verify and publish. Failed units are reported and the rest
// continue unless FailFast is set.
func Build(ctx context.Context, opts *Options) (err error) {
	ctx = logger.WithName(ctx, "build")

	p, err := newPipeline(ctx, opts)
	if err != nil {
		return err
	}

	version, err := p.version()
	if err != nil {
		return err
	}

	units, err := p.resolve(version)
	if err != nil {
		return err
	}

	if len(units) == 0 {
		return ErrNoUnits
	}

	lock, err := common.AcquireLock(ctx, p.cfg.ReleasesPath())
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, lock.Release())
	}()

	logger.InfoKV(ctx, "Starting build", "version", version, "units", len(units), "jobs", p.jobs())

	pkgs, buildErr := p.buildAll(ctx, units)
	err = multierr.Append(err, buildErr)

	logger.InfoKV(ctx, "Build finished", "built", len(pkgs), "failed", len(multierr.Errors(buildErr)))

	if len(pkgs) == 0 {
		return err
	}

	if saveErr := p.saveManifest(ctx, version, pkgs); saveErr != nil {
		return multierr.Append(err, saveErr)
	}

	if buildErr != nil && opts.FailFast {
		return err
	}

	if opts.Verify {
		v, verr := p.verifier()
		if verr != nil {
			return multierr.Append(err, verr)
		}

		var verifyErr error

		pkgs, verifyErr = v.VerifyAll(ctx, pkgs)
		err = multierr.Append(err, verifyErr)
	}

	if opts.Publish {
		err = multierr.Append(err, p.publisher().PushAll(ctx, pkgs))
	}

	return err
}

// buildAll builds units with up to jobs at once. Packages keep unit order.
func (p *pipeline) buildAll(ctx context.Context, units []build.Unit) ([]*build.Package, error) {
	b := p.builder()
	results := make([]*build.Package, len(units))
	errs := make([]error, len(units))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.jobs())

	for i := range units {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}

			pkg, err := b.Build(groupCtx, &units[i])
			if err != nil {
				logger.ErrorKV(ctx, "Build failed", "unit", units[i].Label(), "error", err)
				errs[i] = err

				if p.opts.FailFast {
					return err
				}

				return nil
			}

			results[i] = pkg

			return nil
		})
	}

	failed := group.Wait()

	pkgs := make([]*build.Package, 0, len(units))
	skipped := 0

	var combined error

	for i := range units {
		switch {
		case results[i] != nil:
			pkgs = append(pkgs, results[i])
		case errs[i] == nil:
			skipped++
		case failed != nil && ctx.Err() == nil && errors.Is(errs[i], context.Canceled) && errs[i] != failed:
			// Interrupted by the fail-fast cancellation.
			skipped++
		default:
			combined = multierr.Append(combined, errs[i])
		}
	}

	if skipped > 0 {
		logger.WarnKV(ctx, "Skipped units", "skipped", skipped)
	}

	if err := ctx.Err(); err != nil && skipped > 0 {
		combined = multierr.Append(combined, err)
	}

	return pkgs, combined
}

// saveManifest records pkgs in the manifest of version, keeping packages
// earlier runs recorded for other units.
func (p *pipeline) saveManifest(ctx context.Context, version string, pkgs []*build.Package) error {
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Cannot detect build actor", "error", err)
	}

	m, err := p.manifests.Load(ctx, version)

	switch {
	case errors.Is(err, manifest.ErrNotFound):
		m = &manifest.Manifest{Version: version}
	case err != nil:
		return fmt.Errorf("load manifest: %w", err)
	}

	m.RunID = uuid.NewString()
	m.BuiltBy = actor
	m.BuiltAt = p.now().UTC()

	for _, pkg := range pkgs {
		pkg.RunID = m.RunID
	}

	m.Merge(pkgs)

	if err = p.manifests.Save(ctx, m); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}

	logger.InfoKV(ctx, "Saved manifest", "run_id", m.RunID, "built", len(pkgs), "recorded", len(m.Packages))

	return nil
}
