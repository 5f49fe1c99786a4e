package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches errors by code so wrapped instances compare equal to the
// package sentinels.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeEmbeddingProvider = "EMBEDDING_PROVIDER_ERROR"
	ErrCodeSearchBackend     = "SEARCH_BACKEND_ERROR"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
)

// Validation errors
var (
	ErrEmptyTitle               = NewDomainError(ErrCodeValidation, "title is required")
	ErrEmptyContent             = NewDomainError(ErrCodeValidation, "content is required")
	ErrEmptyQuery               = NewDomainError(ErrCodeValidation, "query is required")
	ErrEmptyServiceScope        = NewDomainError(ErrCodeValidation, "at least one service is required")
	ErrInvalidService           = NewDomainError(ErrCodeValidation, "invalid service")
	ErrInvalidSourceType        = NewDomainError(ErrCodeValidation, "invalid source type")
	ErrInvalidFileType          = NewDomainError(ErrCodeValidation, "invalid file type")
	ErrInvalidStatus            = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrWrongEmbeddingDimensions = NewDomainError(ErrCodeValidation, "embedding has wrong dimensions")
	ErrMissingRequiredField     = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "knowledge document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
)

// Infrastructure errors
var (
	ErrEmbeddingProvider = NewDomainError(ErrCodeEmbeddingProvider, "embedding provider request failed")
	ErrSearchBackend     = NewDomainError(ErrCodeSearchBackend, "vector search backend unavailable")
	ErrPersistence       = NewDomainError(ErrCodePersistence, "storage operation failed")
)
