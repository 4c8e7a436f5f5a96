package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docvec/docvec/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docvec",
		Short: "Document chunk ingestion and vector retrieval",
		Long:  "docvec loads RAG JSON chunk exports into a vector store and runs metadata-filtered similarity queries against them",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.QueryCmd())
	rootCmd.AddCommand(cli.StatsCmd())
	rootCmd.AddCommand(cli.CollectionsCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
