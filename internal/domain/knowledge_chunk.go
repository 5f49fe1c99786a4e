package domain

import "time"

// EmbeddingDimensions is the fixed dimensionality of all stored
// embedding vectors. Vectors of any other length are rejected before
// persistence.
const EmbeddingDimensions = 1536

// ChunkMetadata is the free-form metadata bag carried by each chunk.
type ChunkMetadata struct {
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Page       int      `json:"page,omitempty"`
	Section    string   `json:"section,omitempty"`
	ScenarioID string   `json:"scenario_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
}

// KnowledgeChunk is one text window of a parent document, independently
// embedded and searchable. Title, source type, company and service
// scope are denormalized from the parent so retrieval filters work at
// chunk granularity without a join.
type KnowledgeChunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
	Embedding  []float32

	Title      string
	SourceType SourceType
	CompanyID  string
	Services   []Service

	Metadata ChunkMetadata

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateChunk validates a KnowledgeChunk before persistence.
func ValidateChunk(c *KnowledgeChunk) error {
	if c == nil {
		return ErrMissingRequiredField
	}
	if c.DocumentID == "" {
		return NewDomainError(ErrCodeValidation, "chunk DocumentID is required")
	}
	if c.ChunkIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk index must not be negative")
	}
	if c.Text == "" {
		return NewDomainError(ErrCodeValidation, "chunk text is required")
	}
	return ValidateEmbedding(c.Embedding)
}

// ValidateEmbedding rejects vectors that do not match the fixed
// dimensionality.
func ValidateEmbedding(embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return ErrWrongEmbeddingDimensions
	}
	return nil
}
