package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/service"
)

// SearchRepository implements vector and lexical retrieval over active
// chunks.
type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

// SearchByEmbedding runs cosine similarity search over active chunks.
// Scores are normalized to [0, 1] from the cosine distance reported by
// the index, so 1 means identical direction.
func (r *SearchRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters service.SearchFilters, limit int) ([]*service.SearchResult, error) {
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	args := []any{pgvector.NewVector(embedding)}
	where, args := buildFilterClauses(filters, args)

	query := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS score
		FROM knowledge_chunks
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d`,
		chunkColumns, strings.Join(where, " AND "), len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "similarity search failed", err)
	}
	defer rows.Close()

	var results []*service.SearchResult
	for rows.Next() {
		c, score, err := scanChunkWithScore(rows)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "similarity search failed", err)
		}
		results = append(results, &service.SearchResult{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "similarity search failed", err)
	}
	return results, nil
}

// SearchLexical is the degraded retrieval path: a substring match over
// chunk text and title with the same filter semantics as the vector
// path. Results carry no similarity score.
func (r *SearchRepository) SearchLexical(ctx context.Context, query string, filters service.SearchFilters, limit int) ([]*service.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []any{"%" + query + "%"}
	where, args := buildFilterClauses(filters, args)
	where = append(where, "(text ILIKE $1 OR title ILIKE $1)")

	sql := fmt.Sprintf(`
		SELECT %s
		FROM knowledge_chunks
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d`,
		chunkColumns, strings.Join(where, " AND "), len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "lexical search failed", err)
	}
	defer rows.Close()

	chunks, err := scanChunkRows(rows)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeSearchBackend, "lexical search failed", err)
	}

	results := make([]*service.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, &service.SearchResult{Chunk: c})
	}
	return results, nil
}

// GetKnowledgeStats aggregates the active knowledge base: document
// count plus chunk counts grouped by source and by category. Chunks
// without a category are excluded from the category breakdown.
func (r *SearchRepository) GetKnowledgeStats(ctx context.Context) (*service.KnowledgeStats, error) {
	stats := &service.KnowledgeStats{
		BySource:   make(map[string]int),
		ByCategory: make(map[string]int),
	}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_documents WHERE is_active = TRUE AND deleted_at IS NULL`,
	).Scan(&stats.TotalDocuments)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT source_type, COUNT(*) FROM knowledge_chunks WHERE is_active = TRUE GROUP BY source_type`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT metadata->>'category', COUNT(*)
		 FROM knowledge_chunks
		 WHERE is_active = TRUE AND COALESCE(metadata->>'category', '') <> ''
		 GROUP BY metadata->>'category'`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	return stats, rows.Err()
}

// buildFilterClauses turns the filter set into conjunctive WHERE
// clauses, appending bind arguments as it goes. Activity filtering is
// always included.
func buildFilterClauses(filters service.SearchFilters, args []any) ([]string, []any) {
	where := []string{"is_active = TRUE"}

	if len(filters.Sources) > 0 {
		sources := make([]string, len(filters.Sources))
		for i, s := range filters.Sources {
			sources[i] = string(s)
		}
		args = append(args, sources)
		where = append(where, fmt.Sprintf("source_type = ANY($%d)", len(args)))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		where = append(where, fmt.Sprintf("metadata->>'category' = $%d", len(args)))
	}
	if filters.CompanyID != "" {
		args = append(args, filters.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if len(filters.Tags) > 0 {
		args = append(args, filters.Tags)
		where = append(where, fmt.Sprintf("metadata->'tags' ?| $%d", len(args)))
	}
	if len(filters.Services) > 0 {
		args = append(args, domain.ServiceStrings(filters.Services))
		where = append(where, fmt.Sprintf("services && $%d", len(args)))
	}

	return where, args
}

func scanChunkWithScore(row pgx.Row) (*domain.KnowledgeChunk, float32, error) {
	var c domain.KnowledgeChunk
	var embedding pgvector.Vector
	var companyID *string
	var services []string
	var metadata []byte
	var score float32
	if err := row.Scan(
		&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Text, &embedding,
		&c.Title, &c.SourceType, &companyID, &services, &metadata,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &score,
	); err != nil {
		return nil, 0, err
	}
	c.Embedding = embedding.Slice()
	c.CompanyID = stringOrEmpty(companyID)
	c.Services = domain.ServicesFromStrings(services)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, 0, err
		}
	}
	return &c, score, nil
}
