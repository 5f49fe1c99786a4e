package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *KnowledgeDocument {
	now := time.Now().UTC()
	return &KnowledgeDocument{
		ID:         "doc-1",
		Title:      "Pricing Objection",
		SourceType: SourceTypeScenario,
		FileType:   FileTypeTXT,
		Services:   []Service{ServiceAIAgent},
		Status:     StatusProcessing,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("accepts a valid document", func(t *testing.T) {
		require.NoError(t, ValidateDocument(validDocument()))
	})

	t.Run("rejects nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDocument(nil), ErrMissingRequiredField)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		d := validDocument()
		d.Title = "   "
		assert.ErrorIs(t, ValidateDocument(d), ErrEmptyTitle)
	})

	t.Run("rejects unknown source type", func(t *testing.T) {
		d := validDocument()
		d.SourceType = "webinar"
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidSourceType)
	})

	t.Run("rejects unknown file type", func(t *testing.T) {
		d := validDocument()
		d.FileType = "csv"
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidFileType)
	})

	t.Run("allows empty file type", func(t *testing.T) {
		d := validDocument()
		d.FileType = ""
		require.NoError(t, ValidateDocument(d))
	})

	t.Run("rejects empty service scope", func(t *testing.T) {
		d := validDocument()
		d.Services = nil
		assert.ErrorIs(t, ValidateDocument(d), ErrEmptyServiceScope)
	})

	t.Run("rejects unknown service", func(t *testing.T) {
		d := validDocument()
		d.Services = []Service{"telegram"}
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidService)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		d := validDocument()
		d.Status = "queued"
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidStatus)
	})
}

func TestValidateChunk(t *testing.T) {
	valid := func() *KnowledgeChunk {
		return &KnowledgeChunk{
			ID:         "chunk-1",
			DocumentID: "doc-1",
			ChunkIndex: 0,
			Text:       "some window of text",
			Embedding:  make([]float32, EmbeddingDimensions),
			Title:      "Pricing Objection",
			SourceType: SourceTypeScenario,
			Services:   []Service{ServiceAIAgent},
			IsActive:   true,
		}
	}

	t.Run("accepts a valid chunk", func(t *testing.T) {
		require.NoError(t, ValidateChunk(valid()))
	})

	t.Run("rejects missing parent", func(t *testing.T) {
		c := valid()
		c.DocumentID = ""
		require.Error(t, ValidateChunk(c))
	})

	t.Run("rejects negative index", func(t *testing.T) {
		c := valid()
		c.ChunkIndex = -1
		require.Error(t, ValidateChunk(c))
	})

	t.Run("rejects short embedding", func(t *testing.T) {
		c := valid()
		c.Embedding = make([]float32, 768)
		assert.ErrorIs(t, ValidateChunk(c), ErrWrongEmbeddingDimensions)
	})

	t.Run("rejects long embedding", func(t *testing.T) {
		c := valid()
		c.Embedding = make([]float32, EmbeddingDimensions+1)
		assert.ErrorIs(t, ValidateChunk(c), ErrWrongEmbeddingDimensions)
	})
}

func TestHasCode(t *testing.T) {
	err := NewDomainErrorWithCause(ErrCodeSearchBackend, "index missing", assert.AnError)
	assert.True(t, HasCode(err, ErrCodeSearchBackend))
	assert.False(t, HasCode(err, ErrCodeValidation))
	assert.False(t, HasCode(assert.AnError, ErrCodeSearchBackend))
}

func TestServiceRoundTrip(t *testing.T) {
	in := []Service{ServiceWhatsApp, ServiceAIAgent}
	assert.Equal(t, in, ServicesFromStrings(ServiceStrings(in)))
}
