package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrawlCmd runs one crawl from the command line and prints the result.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl [keyword]",
		Short: "Run a single crawl and print the articles as JSON",
		Long: `Runs the same crawl the admin console triggers, using the configured
extractor, and writes the result to stdout. Without a keyword the default
keyword is used.`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, args []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	keyword := a.bridge.NormalizeKeyword(strings.Join(args, " "))
	result, err := a.bridge.Crawl(cmd.Context(), keyword)
	if err != nil {
		return fmt.Errorf("crawl %q: %w", keyword, err)
	}
	a.logger.Info("crawl command finished",
		zap.String("keyword", result.Keyword),
		zap.Int("articles", result.TotalCount),
		zap.Bool("fallback", result.Fallback),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
