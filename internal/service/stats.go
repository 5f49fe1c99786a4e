package service

import (
	"context"

	"github.com/pitchlabs/coachkb/internal/telemetry"
)

// KnowledgeStats aggregates the active knowledge base. BySource and
// ByCategory count active chunks; documents without a category are
// excluded from the category breakdown but counted everywhere else.
type KnowledgeStats struct {
	TotalDocuments int
	BySource       map[string]int
	ByCategory     map[string]int
}

// GetStats returns aggregate counts over the active knowledge base.
func (s *KnowledgeService) GetStats(ctx context.Context) (*KnowledgeStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.GetStats", telemetry.SpanAttributes{
		Operation: "stats",
	})
	defer span.End()

	return s.statsRepo.GetKnowledgeStats(ctx)
}
