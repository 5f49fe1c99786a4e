package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/repository"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate knowledge base statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pool, err := getDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := repository.NewSearchRepository(pool).GetKnowledgeStats(ctx)
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				jsonBytes, _ := json.MarshalIndent(map[string]interface{}{
					"total_documents": stats.TotalDocuments,
					"by_source":       stats.BySource,
					"by_category":     stats.ByCategory,
				}, "", "  ")
				fmt.Println(string(jsonBytes))
				return nil
			}

			fmt.Printf("Documents: %d\n", stats.TotalDocuments)
			fmt.Println("Chunks by source:")
			printCounts(stats.BySource)
			fmt.Println("Chunks by category:")
			printCounts(stats.ByCategory)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	return cmd
}

func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %d\n", k, counts[k])
	}
}
