package cmd

import (
	"github.com/spf13/cobra"

	"github.com/appcanary/packager/internal/service/packager"
)

func newPublishCommand() *cobra.Command {
	opts := new(packager.Options)

	cmd := &cobra.Command{
		Use:   "publish <version>",
		Short: "Push the packages recorded for a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts.Version = args[0]

			return run(packager.Publish, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Recipes, "recipe", "r", nil, "recipe to publish (repeatable, default all)")

	return cmd
}
