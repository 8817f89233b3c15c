package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/appcanary/packager/internal/service/packager"
	"github.com/appcanary/packager/internal/version"
)

var (
	// configPath to the configuration YAML file; empty reads the default file if present.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command of the release pipeline.
	rootCmd = &cobra.Command{
		Use:   version.Name,
		Short: "Build and publish appcanary agent packages",
		Long: `Builds deb and rpm packages of the appcanary agent for every supported
distro release and architecture with fpm, records them in a release manifest,
optionally installs them in a container and pushes them to packagecloud.`,
		SilenceUsage: true,
	}
)

// Execute runs the appcanary-packager CLI and exits with non-zero status on error.
func Execute() {
	rootCmd.AddCommand(
		newBuildCommand(),
		newPublishCommand(),
		newPlanCommand(),
		newRecipesCommand(),
		version.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes fn with a context cancelled on SIGTERM or SIGINT.
func run(fn func(ctx context.Context, opts *packager.Options) error, opts *packager.Options) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	opts.ConfigPath = configPath
	opts.LogLevel = logLevel

	return fn(ctx, opts)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default appcanary-packager.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
}
