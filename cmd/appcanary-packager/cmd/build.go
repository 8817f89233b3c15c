package cmd

import (
	"github.com/spf13/cobra"

	"github.com/appcanary/packager/internal/service/packager"
)

func newBuildCommand() *cobra.Command {
	opts := new(packager.Options)

	cmd := &cobra.Command{
		Use:   "build <version>",
		Short: "Build packages for every selected recipe",
		Long: `Builds one package per distro release and architecture of the selected
recipes and records them in releases/manifest_<version>.yaml.

A failed unit is reported and the remaining units are still built unless
--fail-fast is given. The command exits non-zero when any unit failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts.Version = args[0]

			return run(packager.Build, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.Recipes, "recipe", "r", nil, "recipe to build (repeatable, default all)")
	flags.BoolVar(&opts.Stamp, "stamp", false, "append the current date to the version")
	flags.IntVarP(&opts.Jobs, "jobs", "j", 0, "units built at once (default from configuration)")
	flags.BoolVar(&opts.FailFast, "fail-fast", false, "stop after the first failed unit")
	flags.BoolVar(&opts.Publish, "publish", false, "push built packages to packagecloud")
	flags.BoolVar(&opts.Verify, "verify", false, "install built packages in a container before publishing")

	return cmd
}
