package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/pitchlabs/coachkb/internal/domain"
)

const chunkColumns = `id, document_id, chunk_index, text, embedding,
	title, source_type, company_id, services, metadata,
	is_active, created_at, updated_at`

// ChunkRepository handles persistence of knowledge chunks and their
// embeddings.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

func (r *ChunkRepository) Create(ctx context.Context, c *domain.KnowledgeChunk) error {
	if err := domain.ValidateEmbedding(c.Embedding); err != nil {
		return err
	}

	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO knowledge_chunks
			(id, document_id, chunk_index, text, embedding,
			 title, source_type, company_id, services, metadata,
			 is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.DocumentID, c.ChunkIndex, c.Text, pgvector.NewVector(c.Embedding),
		c.Title, c.SourceType, nullableString(c.CompanyID), domain.ServiceStrings(c.Services), metadata,
		c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeChunk, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+chunkColumns+`
		 FROM knowledge_chunks WHERE id = $1 AND is_active = TRUE`,
		id,
	)
	c, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return c, nil
}

// UpdateTextAndEmbedding replaces a chunk's text together with its
// embedding so the two can never diverge.
func (r *ChunkRepository) UpdateTextAndEmbedding(ctx context.Context, id, text string, embedding []float32) error {
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET text = $1, embedding = $2, updated_at = $3
		 WHERE id = $4 AND is_active = TRUE`,
		text, pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

func (r *ChunkRepository) UpdateTitle(ctx context.Context, id, title string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET title = $1, updated_at = $2
		 WHERE id = $3 AND is_active = TRUE`,
		title, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

func (r *ChunkRepository) UpdateMetadata(ctx context.Context, id string, metadata domain.ChunkMetadata) error {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET metadata = $1, updated_at = $2
		 WHERE id = $3 AND is_active = TRUE`,
		encoded, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// Deactivate soft-deletes a single chunk.
func (r *ChunkRepository) Deactivate(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET is_active = FALSE, updated_at = $1
		 WHERE id = $2 AND is_active = TRUE`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// DeactivateByDocument soft-deletes every chunk of a document. Zero
// affected rows is not an error; a document can legitimately have all
// chunks already deactivated.
func (r *ChunkRepository) DeactivateByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE knowledge_chunks SET is_active = FALSE, updated_at = $1
		 WHERE document_id = $2 AND is_active = TRUE`,
		time.Now().UTC(), documentID,
	)
	return err
}

// ListByDocument returns all active chunks of a document in chunk order.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+chunkColumns+`
		 FROM knowledge_chunks
		 WHERE document_id = $1 AND is_active = TRUE
		 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func scanChunk(row pgx.Row) (*domain.KnowledgeChunk, error) {
	var c domain.KnowledgeChunk
	var embedding pgvector.Vector
	var companyID *string
	var services []string
	var metadata []byte
	if err := row.Scan(
		&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Text, &embedding,
		&c.Title, &c.SourceType, &companyID, &services, &metadata,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Embedding = embedding.Slice()
	c.CompanyID = stringOrEmpty(companyID)
	c.Services = domain.ServicesFromStrings(services)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func scanChunkRows(rows pgx.Rows) ([]*domain.KnowledgeChunk, error) {
	var results []*domain.KnowledgeChunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
