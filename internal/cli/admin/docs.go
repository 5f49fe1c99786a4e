package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/repository"
	"github.com/pitchlabs/coachkb/internal/service"
)

// DocsCmd returns the docs command group
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage knowledge documents",
	}

	cmd.AddCommand(docsGetCmd())
	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsDeleteCmd())

	return cmd
}

func docsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a knowledge document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := docsService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := svc.GetDocument(ctx, args[0])
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				jsonBytes, _ := json.MarshalIndent(doc, "", "  ")
				fmt.Println(string(jsonBytes))
				return nil
			}

			fmt.Printf("%s  %s\n", doc.ID, doc.Title)
			fmt.Printf("  status: %s  source: %s  chunks: %d  tokens: %d\n",
				doc.Status, doc.SourceType, doc.TotalChunks, doc.TotalTokens)
			if doc.ProcessingError != "" {
				fmt.Printf("  error: %s\n", doc.ProcessingError)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	return cmd
}

func docsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := docsService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			page, err := svc.ListDocuments(ctx, service.ListDocumentsInput{
				Cursor: cursor,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			for _, doc := range page.Items {
				fmt.Printf("%s  %-10s %-10s %s\n", doc.ID, doc.Status, doc.SourceType, doc.Title)
			}
			if page.HasMore {
				fmt.Printf("\nnext cursor: %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	return cmd
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a document and deactivate its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := docsService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.DeleteDocument(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Document deleted: %s\n", args[0])
			return nil
		},
	}
}

func docsService(ctx context.Context) (*service.KnowledgeService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// Read and delete paths never touch the embedder, so no OpenAI key
	// is needed here.
	svc := service.NewKnowledgeService(
		repository.NewDocumentRepository(pool),
		repository.NewChunkRepository(pool),
		repository.NewSearchRepository(pool),
		nil,
		repository.NewTxRunner(pool),
	)

	return svc, pool.Close, nil
}
