// Package cmd defines and implements the CLI commands for the trendwatch executable.
//
// Architecture overview:
//   - HTTP surface: internal/api.Server renders the loading, topics, and error views, the JSON API, probes, and
//     /metrics. Every request only reads or nudges the orchestrator; none of them wait for a fetch.
//   - Orchestrator: internal/orchestrator runs at most one background fetch at a time and caches its outcome.
//     A reset discards the cached outcome and supersedes any fetch still running.
//   - Fetch pipeline: the Session Manager lazily launches one headless Chrome through chromedp; the Extractor logs
//     in, waits for the trends container, filters the raw text, and resolves the public address via resty.
//   - Persistence: every accepted Success is written once to the configured Record Store (mongo, postgres, or
//     memory), connecting per write. Store failures are logged and never change what the views show.
//   - Configuration & plumbing: Viper populates config from env/files (TRENDS_* plus the legacy MONGO_URI, PORT,
//     TWITTER_USERNAME... names); zap provides structured logging; Prometheus metrics are exported on /metrics.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/app"
	"github.com/JakeFAU/trendwatch/internal/config"
	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/orchestrator"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Run(ctx context.Context) error
	Close(ctx context.Context) error
	Logger() *zap.Logger
	Orchestrator() *orchestrator.Orchestrator
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfg config.Config, logger *zap.Logger) (App, error) {
	return app.Build(cfg, logger)
}

// newLogger is swapped in tests to keep output quiet.
var newLogger = logging.New

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "trendwatch",
		Short: "Serves trending topics scraped through a headless browser.",
		Long: `trendwatch logs into the configured social site with a headless browser,
reads the trending topics, and serves them over HTTP while persisting every
fetch to the configured record store.`,
		SilenceUsage: true,

		// Builds the application before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")

	cmd.AddCommand(newServeCmd(), newFetchCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
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
