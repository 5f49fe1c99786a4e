package service

import (
	"context"
	"log"

	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/telemetry"
)

const (
	defaultSearchLimit  = 10
	defaultMinScore     = 0.7
	candidateMultiplier = 10

	// fallbackScore is the placeholder relevance assigned to lexical
	// matches, which carry no computed similarity.
	fallbackScore = 0.5
)

// SearchFilters is a conjunctive filter set over denormalized chunk
// fields. Zero values mean "no constraint"; isActive=true is always
// implied.
type SearchFilters struct {
	Sources   []domain.SourceType
	Category  string
	CompanyID string
	Tags      []string
	Services  []domain.Service
}

// SearchResult pairs a chunk with its relevance score.
type SearchResult struct {
	Chunk *domain.KnowledgeChunk
	Score float32
}

// SearchInput represents input for a knowledge search. A nil MinScore
// selects the default threshold; an explicit zero disables thresholding.
type SearchInput struct {
	Query    string
	Limit    int
	MinScore *float32
	Filters  SearchFilters
}

// SearchOutput is an ordered result list. Degraded is set when the
// vector backend was unavailable and lexical fallback produced the
// results.
type SearchOutput struct {
	Results  []*SearchResult
	Degraded bool
}

// SearchRepositoryInterface defines the repository interface for
// retrieval. Both methods are read-only.
type SearchRepositoryInterface interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]*SearchResult, error)
	SearchLexical(ctx context.Context, query string, filters SearchFilters, limit int) ([]*SearchResult, error)
}

// SearchService executes semantic retrieval with lexical degradation.
type SearchService struct {
	repo     SearchRepositoryInterface
	embedder EmbeddingClientInterface
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo SearchRepositoryInterface, embedder EmbeddingClientInterface) *SearchService {
	return &SearchService{
		repo:     repo,
		embedder: embedder,
	}
}

// Search embeds the query and runs a similarity search with filters,
// score thresholding and ranking. Infrastructure failures — the
// search-side embedding call or the vector backend — degrade
// transparently to lexical search; an empty result set does not.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		CompanyID: input.Filters.CompanyID,
		Operation: "search",
	})
	defer span.End()

	if input.Query == "" {
		return nil, domain.ErrEmptyQuery
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	minScore := float32(defaultMinScore)
	if input.MinScore != nil {
		minScore = *input.MinScore
	}

	embedding, err := s.embedder.Embed(ctx, input.Query)
	if err != nil {
		if domain.HasCode(err, domain.ErrCodeEmbeddingProvider) {
			return s.fallback(ctx, input.Query, input.Filters, limit, err)
		}
		return nil, err
	}

	// Over-fetch to compensate for filter- and threshold-induced
	// attrition in the candidate set.
	candidates, err := s.repo.SearchByEmbedding(ctx, embedding, input.Filters, limit*candidateMultiplier)
	if err != nil {
		if domain.HasCode(err, domain.ErrCodeSearchBackend) {
			return s.fallback(ctx, input.Query, input.Filters, limit, err)
		}
		span.SetError(err)
		return nil, err
	}

	results := make([]*SearchResult, 0, limit)
	for _, r := range candidates {
		if r.Score < minScore {
			continue
		}
		results = append(results, r)
		if len(results) == limit {
			break
		}
	}

	return &SearchOutput{Results: results}, nil
}

// fallback runs the lexical search path after a vector infrastructure
// failure. The trigger is logged but not propagated when the fallback
// itself succeeds.
func (s *SearchService) fallback(ctx context.Context, query string, filters SearchFilters, limit int, cause error) (*SearchOutput, error) {
	log.Printf("search: vector path unavailable, falling back to lexical search: %v", cause)
	telemetry.CaptureMessage(ctx, "vector search degraded to lexical fallback")
	telemetry.AddBreadcrumb(ctx, "search", "lexical fallback activated")

	results, err := s.repo.SearchLexical(ctx, query, filters, limit)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		r.Score = fallbackScore
	}

	return &SearchOutput{Results: results, Degraded: true}, nil
}
