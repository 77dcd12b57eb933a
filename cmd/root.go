// Package cmd defines the CLI for the boardcrawler driver binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardcrawler",
		Short: "A crawl orchestrator for paginated job-board listing sites.",
		Long: `boardcrawler walks the categories of a job board, discovers posting
links page by page, extracts structured fields from each posting, and
persists the new ones, rotating proxies, retrying transient failures,
and rate-limiting itself along the way. One config file describes one
target site.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "site config file (YAML)")
	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
