package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pitchlabs/coachkb/internal/domain"
	"github.com/pitchlabs/coachkb/internal/pagination"
	"github.com/pitchlabs/coachkb/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for
// knowledge document persistence.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.KnowledgeDocument) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeDocument, error)
	MarkReady(ctx context.Context, id string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id string, processingError string) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
}

// ChunkRepositoryInterface defines the repository interface for
// knowledge chunk persistence.
type ChunkRepositoryInterface interface {
	Create(ctx context.Context, c *domain.KnowledgeChunk) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeChunk, error)
	UpdateTextAndEmbedding(ctx context.Context, id, text string, embedding []float32) error
	UpdateTitle(ctx context.Context, id, title string) error
	UpdateMetadata(ctx context.Context, id string, metadata domain.ChunkMetadata) error
	Deactivate(ctx context.Context, id string) error
	DeactivateByDocument(ctx context.Context, documentID string) error
}

// StatsRepositoryInterface defines the repository interface for
// aggregate knowledge statistics.
type StatsRepositoryInterface interface {
	GetKnowledgeStats(ctx context.Context) (*KnowledgeStats, error)
}

// EmbeddingClientInterface defines the interface for generating embeddings.
type EmbeddingClientInterface interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ArchiveStore stores the raw content of ingested documents.
// Archival is best-effort and never fails an ingestion.
type ArchiveStore interface {
	PutDocumentContent(ctx context.Context, documentID, content string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// DocumentPageResult is one page of a cursor-paginated document listing.
type DocumentPageResult struct {
	Items      []*domain.KnowledgeDocument
	NextCursor string
	HasMore    bool
}

// SourceMetadata carries the scoping metadata supplied at ingestion.
type SourceMetadata struct {
	Source     domain.SourceType
	Category   string
	CompanyID  string
	ScenarioID string
	UserID     string
	Tags       []string
}

// IngestInput represents the input for ingesting a document.
type IngestInput struct {
	Title       string
	Content     string
	Description string
	FileType    domain.FileType
	Services    []domain.Service
	Metadata    SourceMetadata
}

// ChunkSummary identifies one created chunk.
type ChunkSummary struct {
	ID         string
	ChunkIndex int
}

// IngestOutput is the persisted parent document plus its chunk summaries.
type IngestOutput struct {
	Document *domain.KnowledgeDocument
	Chunks   []ChunkSummary
}

// UpdateChunkInput represents a partial update of a chunk. A nil field
// is left untouched. Updating Text regenerates the embedding before the
// write so text and embedding are never out of sync.
type UpdateChunkInput struct {
	ChunkID  string
	Text     *string
	Title    *string
	Metadata *domain.ChunkMetadata
}

// ListDocumentsInput represents input for listing documents.
type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

// KnowledgeService handles ingestion, updates, deletion and lifecycle
// of knowledge documents and their chunks.
type KnowledgeService struct {
	docRepo   DocumentRepositoryInterface
	chunkRepo ChunkRepositoryInterface
	statsRepo StatsRepositoryInterface
	embedder  EmbeddingClientInterface
	txRunner  TxRunner
	archive   ArchiveStore
	chunkCfg  ChunkConfig
	uuidGen   UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(
	docRepo DocumentRepositoryInterface,
	chunkRepo ChunkRepositoryInterface,
	statsRepo StatsRepositoryInterface,
	embedder EmbeddingClientInterface,
	txRunner TxRunner,
) *KnowledgeService {
	return &KnowledgeService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		statsRepo: statsRepo,
		embedder:  embedder,
		txRunner:  txRunner,
		chunkCfg:  DefaultChunkConfig(),
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// WithArchive configures best-effort raw-content archival.
func (s *KnowledgeService) WithArchive(archive ArchiveStore) *KnowledgeService {
	s.archive = archive
	return s
}

// WithChunkConfig overrides the default chunking configuration.
func (s *KnowledgeService) WithChunkConfig(cfg ChunkConfig) *KnowledgeService {
	s.chunkCfg = cfg
	return s
}

// WithUUIDGenerator overrides UUID generation (for testing).
func (s *KnowledgeService) WithUUIDGenerator(gen UUIDGenerator) *KnowledgeService {
	s.uuidGen = gen
	return s
}

// Ingest turns raw document content into an embedded, searchable
// document. The pipeline is: validate, chunk, batch-embed, persist the
// parent in processing state, persist chunks in order, mark ready.
// An embedding failure aborts before anything is persisted. A failure
// after the parent write leaves the document in processing state; the
// reconciliation sweep moves such documents to failed.
func (s *KnowledgeService) Ingest(ctx context.Context, input IngestInput) (*IngestOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Ingest", telemetry.SpanAttributes{
		CompanyID: input.Metadata.CompanyID,
		Operation: "ingest",
	})
	defer span.End()

	if err := validateIngestInput(input); err != nil {
		return nil, err
	}

	texts := chunkText(input.Content, s.chunkCfg)
	if len(texts) == 0 {
		return nil, domain.ErrEmptyContent
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.KnowledgeDocument{
		ID:              s.uuidGen.NewString(),
		Title:           input.Title,
		Description:     input.Description,
		SourceType:      input.Metadata.Source,
		Category:        input.Metadata.Category,
		FileType:        input.FileType,
		CompanyID:       input.Metadata.CompanyID,
		UserID:          input.Metadata.UserID,
		ScenarioID:      input.Metadata.ScenarioID,
		Services:        input.Services,
		Status:          domain.StatusProcessing,
		TotalChunks:     len(texts),
		TotalCharacters: len(input.Content),
		TotalTokens:     wordCount(input.Content),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.PutDocumentContent(ctx, doc.ID, input.Content); err != nil {
			log.Printf("archive: failed to store raw content for document %s: %v", doc.ID, err)
			telemetry.AddBreadcrumb(ctx, "archive", "raw content archival failed")
		}
	}

	summaries := make([]ChunkSummary, 0, len(texts))
	for i, text := range texts {
		chunk := &domain.KnowledgeChunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			Text:       text,
			Embedding:  embeddings[i],
			Title:      doc.Title,
			SourceType: doc.SourceType,
			CompanyID:  doc.CompanyID,
			Services:   doc.Services,
			Metadata: domain.ChunkMetadata{
				Category:   input.Metadata.Category,
				Tags:       input.Metadata.Tags,
				ScenarioID: input.Metadata.ScenarioID,
				UserID:     input.Metadata.UserID,
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := domain.ValidateChunk(chunk); err != nil {
			span.SetError(err)
			return nil, err
		}
		if err := s.chunkRepo.Create(ctx, chunk); err != nil {
			span.SetError(err)
			return nil, err
		}
		summaries = append(summaries, ChunkSummary{ID: chunk.ID, ChunkIndex: i})
	}

	processedAt := time.Now().UTC()
	if err := s.docRepo.MarkReady(ctx, doc.ID, processedAt); err != nil {
		span.SetError(err)
		return nil, err
	}
	doc.Status = domain.StatusReady
	doc.ProcessedAt = &processedAt

	return &IngestOutput{Document: doc, Chunks: summaries}, nil
}

// MarkFailed moves a document to the failed state, recording the error.
// Callers use this when an ingestion step failed after the parent was
// created.
func (s *KnowledgeService) MarkFailed(ctx context.Context, documentID, processingError string) error {
	return s.docRepo.MarkFailed(ctx, documentID, processingError)
}

// GetDocument retrieves a knowledge document by ID.
func (s *KnowledgeService) GetDocument(ctx context.Context, id string) (*domain.KnowledgeDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.GetDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments lists active documents, newest first, with cursor pagination.
func (s *KnowledgeService) ListDocuments(ctx context.Context, input ListDocumentsInput) (*DocumentPageResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.ListDocuments", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	return s.docRepo.ListWithCursor(ctx, cursor, limit)
}

// UpdateChunk applies a partial update to a chunk. When the text
// changes, the embedding is regenerated first and then written together
// with the text in a single transaction. Aggregate counts on the parent
// are not touched.
func (s *KnowledgeService) UpdateChunk(ctx context.Context, input UpdateChunkInput) (*domain.KnowledgeChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.UpdateChunk", telemetry.SpanAttributes{
		ChunkID:   input.ChunkID,
		Operation: "update",
	})
	defer span.End()

	if input.ChunkID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "chunk ID is required")
	}
	if input.Text != nil && *input.Text == "" {
		return nil, domain.ErrEmptyContent
	}

	chunk, err := s.chunkRepo.GetByID(ctx, input.ChunkID)
	if err != nil {
		return nil, err
	}

	var embedding []float32
	if input.Text != nil {
		embedding, err = s.embedder.Embed(ctx, *input.Text)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		chunks := repos.Chunks()
		if input.Text != nil {
			if err := chunks.UpdateTextAndEmbedding(ctx, input.ChunkID, *input.Text, embedding); err != nil {
				return err
			}
		}
		if input.Title != nil {
			if err := chunks.UpdateTitle(ctx, input.ChunkID, *input.Title); err != nil {
				return err
			}
		}
		if input.Metadata != nil {
			if err := chunks.UpdateMetadata(ctx, input.ChunkID, *input.Metadata); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if input.Text != nil {
		chunk.Text = *input.Text
		chunk.Embedding = embedding
	}
	if input.Title != nil {
		chunk.Title = *input.Title
	}
	if input.Metadata != nil {
		chunk.Metadata = *input.Metadata
	}
	chunk.UpdatedAt = time.Now().UTC()

	return chunk, nil
}

// DeleteDocument soft-deletes a document and cascade-deactivates all of
// its chunks. Rows are never physically removed.
func (s *KnowledgeService) DeleteDocument(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.DeleteDocument", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	now := time.Now().UTC()
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Documents().SoftDelete(ctx, id, now); err != nil {
			return err
		}
		return repos.Chunks().DeactivateByDocument(ctx, id)
	})
	if err != nil {
		span.SetError(err)
	}
	return err
}

// DeleteChunk soft-deletes a single chunk without touching its parent.
func (s *KnowledgeService) DeleteChunk(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.DeleteChunk", telemetry.SpanAttributes{
		ChunkID:   id,
		Operation: "delete",
	})
	defer span.End()

	return s.chunkRepo.Deactivate(ctx, id)
}

func validateIngestInput(input IngestInput) error {
	if len(input.Title) == 0 {
		return domain.ErrEmptyTitle
	}
	if len(input.Content) == 0 {
		return domain.ErrEmptyContent
	}
	if err := domain.ValidateServices(input.Services); err != nil {
		return err
	}
	switch input.Metadata.Source {
	case domain.SourceTypeScenario, domain.SourceTypeGuideline, domain.SourceTypeCompany,
		domain.SourceTypeManual, domain.SourceTypeSession:
		return nil
	default:
		return domain.ErrInvalidSourceType
	}
}
