package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/service"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	var (
		limit      int
		minScore   float32
		sources    []string
		category   string
		companyID  string
		tags       []string
		services   []string
		asContext  bool
		noMinScore bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Run a semantic search over active chunks, with lexical fallback when the vector path is unavailable",
		Args:  cobra.ExactArgs(1),
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

			svc, err := newSearchService(cfg, pool)
			if err != nil {
				return err
			}

			input := service.SearchInput{
				Query: args[0],
				Limit: limit,
				Filters: service.SearchFilters{
					Category:  category,
					CompanyID: companyID,
					Tags:      tags,
					Services:  domain.ServicesFromStrings(services),
				},
			}
			for _, s := range sources {
				input.Filters.Sources = append(input.Filters.Sources, domain.SourceType(s))
			}
			if noMinScore {
				zero := float32(0)
				input.MinScore = &zero
			} else if cmd.Flags().Changed("min-score") {
				input.MinScore = &minScore
			}

			out, err := svc.Search(ctx, input)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asContext {
				fmt.Println(service.FormatContext(out.Results))
				return nil
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				return printSearchJSON(out)
			}

			if out.Degraded {
				fmt.Println("(degraded: lexical fallback)")
			}
			if len(out.Results) == 0 {
				fmt.Println("No results")
				return nil
			}
			for i, r := range out.Results {
				fmt.Printf("%d. [%.3f] %s (%s) chunk %d of document %s\n",
					i+1, r.Score, r.Chunk.Title, r.Chunk.SourceType, r.Chunk.ChunkIndex, r.Chunk.DocumentID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default 10)")
	cmd.Flags().Float32Var(&minScore, "min-score", 0, "Minimum similarity score (default 0.7)")
	cmd.Flags().BoolVar(&noMinScore, "no-min-score", false, "Disable the similarity threshold")
	cmd.Flags().StringSliceVar(&sources, "sources", nil, "Filter by source types")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&companyID, "company", "", "Filter by company scope")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Filter by tags (any match)")
	cmd.Flags().StringSliceVar(&services, "services", nil, "Filter by service scope")
	cmd.Flags().BoolVar(&asContext, "context", false, "Print results as a formatted context block")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func printSearchJSON(out *service.SearchOutput) error {
	type resultJSON struct {
		ChunkID    string  `json:"chunk_id"`
		DocumentID string  `json:"document_id"`
		ChunkIndex int     `json:"chunk_index"`
		Title      string  `json:"title"`
		Text       string  `json:"text"`
		Score      float32 `json:"score"`
	}

	results := make([]resultJSON, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, resultJSON{
			ChunkID:    r.Chunk.ID,
			DocumentID: r.Chunk.DocumentID,
			ChunkIndex: r.Chunk.ChunkIndex,
			Title:      r.Chunk.Title,
			Text:       r.Chunk.Text,
			Score:      r.Score,
		})
	}

	jsonBytes, err := json.MarshalIndent(map[string]interface{}{
		"degraded": out.Degraded,
		"results":  results,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
