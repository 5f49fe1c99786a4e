package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/pagination"
	"github.com/pitchlabs/coachkb/internal/service"
)

const documentColumns = `id, title, description, source_type, category, file_type,
	company_id, user_id, scenario_id, services, status, processing_error,
	total_chunks, total_characters, total_tokens,
	is_active, created_at, updated_at, processed_at, deleted_at`

// DocumentRepository handles persistence of knowledge documents.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.KnowledgeDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_documents
			(id, title, description, source_type, category, file_type,
			 company_id, user_id, scenario_id, services, status, processing_error,
			 total_chunks, total_characters, total_tokens, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		d.ID, d.Title, nullableString(d.Description), d.SourceType, nullableString(d.Category), d.FileType,
		nullableString(d.CompanyID), nullableString(d.UserID), nullableString(d.ScenarioID),
		domain.ServiceStrings(d.Services), d.Status, nullableString(d.ProcessingError),
		d.TotalChunks, d.TotalCharacters, d.TotalTokens, d.IsActive, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+`
		 FROM knowledge_documents WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// MarkReady transitions a processing document to ready.
func (r *DocumentRepository) MarkReady(ctx context.Context, id string, processedAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents
		 SET status = $1, processed_at = $2, processing_error = NULL, updated_at = $3
		 WHERE id = $4 AND status = $5 AND deleted_at IS NULL`,
		domain.StatusReady, processedAt, time.Now().UTC(), id, domain.StatusProcessing,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// MarkFailed transitions a document to failed, recording the error.
func (r *DocumentRepository) MarkFailed(ctx context.Context, id string, processingError string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents
		 SET status = $1, processing_error = $2, updated_at = $3
		 WHERE id = $4 AND deleted_at IS NULL`,
		domain.StatusFailed, nullableString(processingError), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SoftDelete hides a document from all reads without removing the row.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents
		 SET is_active = FALSE, deleted_at = $1, updated_at = $1
		 WHERE id = $2 AND deleted_at IS NULL`,
		deletedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// ListWithCursor pages through active documents, newest first.
func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM knowledge_documents
			 WHERE deleted_at IS NULL AND (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM knowledge_documents
			 WHERE deleted_at IS NULL
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// SweepStaleProcessing marks documents stuck in processing longer than
// the cutoff as failed and reports how many were swept.
func (r *DocumentRepository) SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_documents
		 SET status = $1, processing_error = $2, updated_at = $3
		 WHERE status = $4 AND updated_at < $5 AND deleted_at IS NULL`,
		domain.StatusFailed, reason, time.Now().UTC(), domain.StatusProcessing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func scanDocument(row pgx.Row) (*domain.KnowledgeDocument, error) {
	var d domain.KnowledgeDocument
	var description, category, companyID, userID, scenarioID, processingError *string
	var services []string
	if err := row.Scan(
		&d.ID, &d.Title, &description, &d.SourceType, &category, &d.FileType,
		&companyID, &userID, &scenarioID, &services, &d.Status, &processingError,
		&d.TotalChunks, &d.TotalCharacters, &d.TotalTokens,
		&d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.ProcessedAt, &d.DeletedAt,
	); err != nil {
		return nil, err
	}
	d.Description = stringOrEmpty(description)
	d.Category = stringOrEmpty(category)
	d.CompanyID = stringOrEmpty(companyID)
	d.UserID = stringOrEmpty(userID)
	d.ScenarioID = stringOrEmpty(scenarioID)
	d.ProcessingError = stringOrEmpty(processingError)
	d.Services = domain.ServicesFromStrings(services)
	return &d, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.KnowledgeDocument, error) {
	var results []*domain.KnowledgeDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
