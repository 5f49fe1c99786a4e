package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pitchlabs/coachkb/internal/domain"
)

// MockSearchRepository is a mock implementation of SearchRepositoryInterface
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]*SearchResult, error) {
	args := m.Called(ctx, embedding, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SearchResult), args.Error(1)
}

func (m *MockSearchRepository) SearchLexical(ctx context.Context, query string, filters SearchFilters, limit int) ([]*SearchResult, error) {
	args := m.Called(ctx, query, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SearchResult), args.Error(1)
}

func scoredResult(id string, score float32) *SearchResult {
	return &SearchResult{
		Chunk: &domain.KnowledgeChunk{ID: id, Title: "chunk " + id, Text: "text " + id},
		Score: score,
	}
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()
	query := "how do I handle pricing objections"

	newSvc := func() (*SearchService, *MockSearchRepository, *MockEmbeddingClient) {
		repo := new(MockSearchRepository)
		embedder := new(MockEmbeddingClient)
		return NewSearchService(repo, embedder), repo, embedder
	}

	t.Run("empty query rejected", func(t *testing.T) {
		svc, _, _ := newSvc()

		out, err := svc.Search(ctx, SearchInput{})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})

	t.Run("results above the default threshold, ranked, truncated to limit", func(t *testing.T) {
		svc, repo, embedder := newSvc()
		embedding := makeEmbedding(0.5)

		candidates := []*SearchResult{
			scoredResult("a", 0.95),
			scoredResult("b", 0.85),
			scoredResult("c", 0.72),
			scoredResult("d", 0.69), // below default threshold
			scoredResult("e", 0.10),
		}

		embedder.On("Embed", mock.Anything, query).Return(embedding, nil)
		repo.On("SearchByEmbedding", mock.Anything, embedding, SearchFilters{}, 20).
			Return(candidates, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query, Limit: 2})

		require.NoError(t, err)
		assert.False(t, out.Degraded)
		require.Len(t, out.Results, 2)
		assert.Equal(t, "a", out.Results[0].Chunk.ID)
		assert.Equal(t, "b", out.Results[1].Chunk.ID)
	})

	t.Run("default limit over-fetches tenfold", func(t *testing.T) {
		svc, repo, embedder := newSvc()
		embedding := makeEmbedding(0.5)

		embedder.On("Embed", mock.Anything, query).Return(embedding, nil)
		repo.On("SearchByEmbedding", mock.Anything, embedding, SearchFilters{}, 100).
			Return([]*SearchResult{}, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		require.NoError(t, err)
		assert.Empty(t, out.Results)
		repo.AssertExpectations(t)
	})

	t.Run("explicit zero threshold keeps low-score results", func(t *testing.T) {
		svc, repo, embedder := newSvc()
		zero := float32(0)

		embedder.On("Embed", mock.Anything, query).Return(makeEmbedding(0.5), nil)
		repo.On("SearchByEmbedding", mock.Anything, mock.Anything, SearchFilters{}, mock.Anything).
			Return([]*SearchResult{scoredResult("low", 0.05)}, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query, MinScore: &zero})

		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "low", out.Results[0].Chunk.ID)
	})

	t.Run("filters are passed through untouched", func(t *testing.T) {
		svc, repo, embedder := newSvc()
		filters := SearchFilters{
			Sources:   []domain.SourceType{domain.SourceTypeGuideline},
			Category:  "sales",
			CompanyID: "company-1",
			Tags:      []string{"pricing"},
			Services:  []domain.Service{domain.ServiceAIAgent},
		}

		embedder.On("Embed", mock.Anything, query).Return(makeEmbedding(0.5), nil)
		repo.On("SearchByEmbedding", mock.Anything, mock.Anything, filters, mock.Anything).
			Return([]*SearchResult{}, nil)

		_, err := svc.Search(ctx, SearchInput{Query: query, Filters: filters})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("empty result set is not a degradation", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		embedder.On("Embed", mock.Anything, query).Return(makeEmbedding(0.5), nil)
		repo.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]*SearchResult{}, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.False(t, out.Degraded)
		repo.AssertNotCalled(t, "SearchLexical", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("embedding provider outage falls back to lexical", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		embedder.On("Embed", mock.Anything, query).
			Return(nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingProvider, "embedding request failed", errors.New("timeout")))
		repo.On("SearchLexical", mock.Anything, query, SearchFilters{}, 10).
			Return([]*SearchResult{scoredResult("lex", 0)}, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		require.NoError(t, err)
		assert.True(t, out.Degraded)
		require.Len(t, out.Results, 1)
		assert.Equal(t, float32(0.5), out.Results[0].Score)
	})

	t.Run("vector backend outage falls back to lexical with the requested limit", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		embedder.On("Embed", mock.Anything, query).Return(makeEmbedding(0.5), nil)
		repo.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "similarity search failed", errors.New("connection refused")))
		repo.On("SearchLexical", mock.Anything, query, SearchFilters{}, 3).
			Return([]*SearchResult{scoredResult("l1", 0), scoredResult("l2", 0)}, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query, Limit: 3})

		require.NoError(t, err)
		assert.True(t, out.Degraded)
		require.Len(t, out.Results, 2)
		for _, r := range out.Results {
			assert.Equal(t, float32(0.5), r.Score)
		}
	})

	t.Run("validation errors do not trigger fallback", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		embedder.On("Embed", mock.Anything, query).
			Return(nil, domain.ErrEmptyContent)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
		repo.AssertNotCalled(t, "SearchLexical", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fallback failure surfaces the lexical error", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		embedder.On("Embed", mock.Anything, query).
			Return(nil, domain.NewDomainError(domain.ErrCodeEmbeddingProvider, "provider down"))
		lexErr := domain.NewDomainError(domain.ErrCodeSearchBackend, "lexical search failed")
		repo.On("SearchLexical", mock.Anything, query, SearchFilters{}, 10).Return(nil, lexErr)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		assert.Nil(t, out)
		assert.True(t, domain.HasCode(err, domain.ErrCodeSearchBackend))
	})

	t.Run("large candidate sets are capped at the limit", func(t *testing.T) {
		svc, repo, embedder := newSvc()

		candidates := make([]*SearchResult, 30)
		for i := range candidates {
			candidates[i] = scoredResult(fmt.Sprintf("c%d", i), 0.99)
		}

		embedder.On("Embed", mock.Anything, query).Return(makeEmbedding(0.5), nil)
		repo.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(candidates, nil)

		out, err := svc.Search(ctx, SearchInput{Query: query})

		require.NoError(t, err)
		assert.Len(t, out.Results, 10)
	})
}
