package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaymind/knowledgecore/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "knowledged",
		Short: "Knowledge pipeline daemon",
		Long:  "Daemon for ingesting, indexing and retrieving agent knowledge",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.CrawlCmd())
	rootCmd.AddCommand(cli.YouTubeCmd())
	rootCmd.AddCommand(cli.QueryCmd())
	rootCmd.AddCommand(cli.DocsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
