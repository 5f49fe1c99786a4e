//go:build integration

package service_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/repository"
	"github.com/pitchlabs/coachkb/internal/service"
	"github.com/pitchlabs/coachkb/internal/testutil"
)

// topicEmbedder maps texts onto fixed directions per topic so searches
// behave deterministically without a live provider.
type topicEmbedder struct{}

func (e *topicEmbedder) vector(text string) []float32 {
	angle := math.Pi / 2
	if strings.Contains(strings.ToLower(text), "pricing") {
		angle = 0
	}
	v := make([]float32, domain.EmbeddingDimensions)
	v[0] = float32(math.Cos(angle))
	v[1] = float32(math.Sin(angle))
	return v
}

func (e *topicEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *topicEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func TestKnowledgeServiceIntegration_IngestSearchDelete(t *testing.T) {
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	embedder := &topicEmbedder{}

	knowledgeSvc := service.NewKnowledgeService(docRepo, chunkRepo, searchRepo, embedder, txRunner)
	searchSvc := service.NewSearchService(searchRepo, embedder)

	var documentID string

	t.Run("ingest persists parent and chunks and marks ready", func(t *testing.T) {
		out, err := knowledgeSvc.Ingest(ctx, service.IngestInput{
			Title:    "Pricing objections",
			Content:  "When pricing comes up, anchor on value before discussing discounts.",
			FileType: domain.FileTypeManual,
			Services: []domain.Service{domain.ServiceWhatsApp},
			Metadata: service.SourceMetadata{
				Source:   domain.SourceTypeGuideline,
				Category: "sales",
				Tags:     []string{"pricing"},
			},
		})
		require.NoError(t, err)
		documentID = out.Document.ID

		assert.Equal(t, domain.StatusReady, out.Document.Status)
		require.Len(t, out.Chunks, 1)

		doc, err := knowledgeSvc.GetDocument(ctx, documentID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReady, doc.Status)
		assert.Equal(t, 1, doc.TotalChunks)
	})

	t.Run("search finds the relevant chunk with a high score", func(t *testing.T) {
		_, err := knowledgeSvc.Ingest(ctx, service.IngestInput{
			Title:    "Office logistics",
			Content:  "The office closes at six in the evening on weekdays.",
			FileType: domain.FileTypeManual,
			Services: []domain.Service{domain.ServiceWhatsApp},
			Metadata: service.SourceMetadata{Source: domain.SourceTypeCompany},
		})
		require.NoError(t, err)

		out, err := searchSvc.Search(ctx, service.SearchInput{Query: "how to answer pricing pushback"})
		require.NoError(t, err)
		assert.False(t, out.Degraded)
		require.Len(t, out.Results, 1)
		assert.Equal(t, documentID, out.Results[0].Chunk.DocumentID)
		assert.InDelta(t, 1.0, float64(out.Results[0].Score), 1e-3)

		// the orthogonal logistics chunk sits below the default threshold
		for _, r := range out.Results {
			assert.GreaterOrEqual(t, r.Score, float32(0.7))
		}
	})

	t.Run("stats reflect the active base", func(t *testing.T) {
		stats, err := knowledgeSvc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalDocuments)
		assert.Equal(t, 1, stats.BySource["guideline"])
		assert.Equal(t, 1, stats.BySource["company"])
		assert.Equal(t, 1, stats.ByCategory["sales"])
	})

	t.Run("delete cascades and removes the document from search", func(t *testing.T) {
		require.NoError(t, knowledgeSvc.DeleteDocument(ctx, documentID))

		_, err := knowledgeSvc.GetDocument(ctx, documentID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

		zero := float32(0)
		out, err := searchSvc.Search(ctx, service.SearchInput{Query: "pricing", MinScore: &zero})
		require.NoError(t, err)
		for _, r := range out.Results {
			assert.NotEqual(t, documentID, r.Chunk.DocumentID)
		}

		stats, err := knowledgeSvc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalDocuments)
	})
}
