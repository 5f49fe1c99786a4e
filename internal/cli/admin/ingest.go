package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/service"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	var (
		title       string
		description string
		source      string
		category    string
		fileType    string
		companyID   string
		scenarioID  string
		userID      string
		services    []string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a document into the knowledge base",
		Long:  "Chunk, embed and store a document. Pass - to read content from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			content, err := readContent(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			pool, err := getDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, err := newKnowledgeService(ctx, cfg, pool)
			if err != nil {
				return err
			}

			out, err := svc.Ingest(ctx, service.IngestInput{
				Title:       title,
				Content:     content,
				Description: description,
				FileType:    domain.FileType(fileType),
				Services:    domain.ServicesFromStrings(services),
				Metadata: service.SourceMetadata{
					Source:     domain.SourceType(source),
					Category:   category,
					CompanyID:  companyID,
					ScenarioID: scenarioID,
					UserID:     userID,
					Tags:       tags,
				},
			})
			if err != nil {
				return fmt.Errorf("ingestion failed: %w", err)
			}

			outputFormat, _ := cmd.Flags().GetString("output")
			if outputFormat == "json" {
				data := map[string]interface{}{
					"id":           out.Document.ID,
					"status":       out.Document.Status,
					"total_chunks": out.Document.TotalChunks,
				}
				jsonBytes, _ := json.MarshalIndent(data, "", "  ")
				fmt.Println(string(jsonBytes))
			} else {
				fmt.Printf("Document ingested: %s (%d chunks)\n", out.Document.ID, out.Document.TotalChunks)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Document title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Document description")
	cmd.Flags().StringVar(&source, "source", string(domain.SourceTypeManual), "Source type (scenario, guideline, company, manual, session)")
	cmd.Flags().StringVar(&category, "category", "", "Category label")
	cmd.Flags().StringVar(&fileType, "file-type", string(domain.FileTypeManual), "Original file type (pdf, docx, txt, manual)")
	cmd.Flags().StringVar(&companyID, "company", "", "Company scope")
	cmd.Flags().StringVar(&scenarioID, "scenario", "", "Scenario scope")
	cmd.Flags().StringVar(&userID, "user", "", "User scope")
	cmd.Flags().StringSliceVar(&services, "services", nil, "Service scope (whatsapp, ai_agent)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags for retrieval filtering")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func readContent(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
