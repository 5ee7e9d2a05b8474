// Package cmd defines and implements the CLI commands for the launchcrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/app"
	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/logging"
	"github.com/JakeFAU/launch-table-crawler/internal/runner"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use, so tests can
// inject their own services.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Store() storage.BlobStore
	Runner() *runner.Runner
}

// newApp is the application factory. It is a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launchcrawler",
		Short: "Scrapes wiki launch tables into JSON datasets.",
		Long: `launchcrawler fetches the Falcon 9 and world spaceflight launch lists,
extracts one record per launch, merges time windows into yearly datasets and
saves them for the visualization front end.`,
		SilenceUsage: true,

		// Builds the application after flags are parsed and before the
		// subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFiles(".env"); err != nil {
				return err
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); defaults and LAUNCHCRAWLER_* env vars apply without one")

	cmd.AddCommand(
		newCrawlCmd(),
		newMergeCmd(),
		newAppendCmd(),
		newValidateCmd(),
		newTargetsCmd(),
		newServeCmd(),
	)
	return cmd
}

// Execute is the main entry point.
func Execute() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// withApp adapts fn into a RunE that receives the injected App and closes
// it when fn returns, whether or not fn failed.
func withApp(fn func(cmd *cobra.Command, args []string, a App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		appInstance, err := resolveApp(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()
		return fn(cmd, args, appInstance)
	}
}
