package cmd

import (
	"github.com/spf13/cobra"

	"github.com/appcanary/packager/internal/service/packager"
)

func newPlanCommand() *cobra.Command {
	opts := new(packager.Options)

	cmd := &cobra.Command{
		Use:   "plan <version>",
		Short: "Print the builder commands without running them",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts.Version = args[0]
			opts.Out = c.OutOrStdout()

			return run(packager.Plan, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Recipes, "recipe", "r", nil, "recipe to plan (repeatable, default all)")
	cmd.Flags().BoolVar(&opts.Stamp, "stamp", false, "append the current date to the version")

	return cmd
}

func newRecipesCommand() *cobra.Command {
	opts := new(packager.Options)

	return &cobra.Command{
		Use:   "recipes",
		Short: "List the known recipes",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts.Out = c.OutOrStdout()

			return run(packager.ListRecipes, opts)
		},
	}
}
