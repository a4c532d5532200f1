package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamerjackson/ghcrawler/cmd/crawl"
	"github.com/dreamerjackson/ghcrawler/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rootCmd = &cobra.Command{Use: "ghcrawler", SilenceUsage: true}
	rootCmd.AddCommand(crawl.CrawlCmd, versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
