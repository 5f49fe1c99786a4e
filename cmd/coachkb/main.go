package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/cli/admin"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "coachkb",
		Short: "CoachKB - knowledge retrieval and ingestion for coaching agents",
		Long: `CoachKB manages the knowledge base behind AI coaching surfaces:
ingest documents, search them semantically, and keep the store healthy.

Environment variables use the COACHKB_ prefix, e.g. COACHKB_DATABASE_URL.`,
		Version: version,
	}

	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.SearchCmd())
	rootCmd.AddCommand(admin.DocsCmd())
	rootCmd.AddCommand(admin.StatsCmd())
	rootCmd.AddCommand(admin.SweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
