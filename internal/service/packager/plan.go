package packager

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/appcanary/packager/internal/logger"
)

// Plan prints every command a build would run, without running anything.
func Plan(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "plan")

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

	b := p.builder()

	for i := range units {
		if _, err = fmt.Fprintf(p.out, "# %s\n%s\n", units[i].Label(), b.Command(&units[i])); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Planned build", "version", version, "units", len(units))

	return nil
}

// ListRecipes prints the registered recipes.
func ListRecipes(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "recipes")

	p, err := newPipeline(ctx, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)

	if _, err = fmt.Fprintln(w, "NAME\tDISTRO\tFORMAT\tHOSTING\tVERIFY\tRELEASES"); err != nil {
		return err
	}

	for _, r := range p.recipes() {
		verify := "yes"
		if r.SkipVerify {
			verify = "no"
		}

		releases := make([]string, 0, len(r.Releases))
		for _, rel := range r.Releases {
			if rel.Init != "" {
				releases = append(releases, rel.Name+"("+rel.Init+")")
			} else {
				releases = append(releases, rel.Name)
			}
		}

		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Key(), r.Distro, r.Format, r.Hosting(), verify, strings.Join(releases, " "))
		if err != nil {
			return err
		}
	}

	return w.Flush()
}
