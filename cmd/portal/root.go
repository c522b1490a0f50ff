package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/config"
	"github.com/JakeFAU/trend-briefing-portal/internal/logging"
)

// appKeyType is the key for storing the app in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. Tests replace it to inject fakes.
var newApp = buildApp

// newRootCmd creates the root command with its subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Trend briefing portal with a login gate and a news crawl bridge.",
		Long: `portal serves the trend briefing web app: a session-gated dashboard,
video pages and an admin crawl console. Crawls forward a keyword to a
scrape+extract backend (Firecrawl, Colly or headless Chrome) and fall back
to placeholder articles when nothing is extracted.`,
		SilenceUsage: true,

		// Runs before every subcommand: load config, build the logger and the app.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(logging.Config{
				Development: cfg.Logging.Development,
				Level:       cfg.Logging.Level,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				_ = logger.Sync()
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, err := resolveApp(cmd.Context()); err == nil {
				a.Close()
				if syncErr := a.logger.Sync(); syncErr != nil && !errors.Is(syncErr, os.ErrInvalid) {
					fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
				}
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml, json or toml)")
	cmd.AddCommand(newServeCmd(), newCrawlCmd())
	return cmd
}

func resolveApp(ctx context.Context) (*app, error) {
	if ctx == nil {
		return nil, errors.New("application services not initialized")
	}
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}
