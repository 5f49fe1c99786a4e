package domain

import (
	"strings"
	"time"
)

// SourceType classifies where a knowledge document came from.
type SourceType string

const (
	SourceTypeScenario  SourceType = "scenario"
	SourceTypeGuideline SourceType = "guideline"
	SourceTypeCompany   SourceType = "company"
	SourceTypeManual    SourceType = "manual"
	SourceTypeSession   SourceType = "session"
)

// FileType records the original artifact format of an ingested document.
type FileType string

const (
	FileTypePDF    FileType = "pdf"
	FileTypeDOCX   FileType = "docx"
	FileTypeTXT    FileType = "txt"
	FileTypeManual FileType = "manual"
)

// DocumentStatus represents the processing lifecycle of a document.
// A document is created in StatusProcessing and moves to StatusReady
// once all chunks are persisted, or StatusFailed on error. There is no
// transition back out of a terminal state.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Service identifies a generation surface allowed to retrieve knowledge.
type Service string

const (
	ServiceWhatsApp Service = "whatsapp"
	ServiceAIAgent  Service = "ai_agent"
)

// KnowledgeDocument is the parent record for one ingested source artifact.
type KnowledgeDocument struct {
	ID          string
	Title       string
	Description string
	SourceType  SourceType
	Category    string
	FileType    FileType

	CompanyID  string
	UserID     string
	ScenarioID string

	// Services gates which generation surfaces may retrieve this
	// document's chunks. Never empty for a valid document.
	Services []Service

	Status          DocumentStatus
	ProcessingError string

	TotalChunks     int
	TotalCharacters int
	TotalTokens     int

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	ProcessedAt *time.Time
	DeletedAt   *time.Time
}

// ValidateDocument validates a KnowledgeDocument before persistence.
func ValidateDocument(d *KnowledgeDocument) error {
	if d == nil {
		return ErrMissingRequiredField
	}
	if d.ID == "" {
		return NewDomainError(ErrCodeValidation, "document ID is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if !isValidSourceType(d.SourceType) {
		return ErrInvalidSourceType
	}
	if d.FileType != "" && !isValidFileType(d.FileType) {
		return ErrInvalidFileType
	}
	if !isValidStatus(d.Status) {
		return ErrInvalidStatus
	}
	return ValidateServices(d.Services)
}

// ValidateServices checks that the service scope is non-empty and drawn
// from the allowed set.
func ValidateServices(services []Service) error {
	if len(services) == 0 {
		return ErrEmptyServiceScope
	}
	for _, s := range services {
		switch s {
		case ServiceWhatsApp, ServiceAIAgent:
		default:
			return ErrInvalidService
		}
	}
	return nil
}

// ServiceStrings converts a service set to its storage representation.
func ServiceStrings(services []Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = string(s)
	}
	return out
}

// ServicesFromStrings converts stored service names back to the typed set.
func ServicesFromStrings(values []string) []Service {
	out := make([]Service, len(values))
	for i, v := range values {
		out[i] = Service(v)
	}
	return out
}

func isValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeScenario, SourceTypeGuideline, SourceTypeCompany,
		SourceTypeManual, SourceTypeSession:
		return true
	}
	return false
}

func isValidFileType(t FileType) bool {
	switch t {
	case FileTypePDF, FileTypeDOCX, FileTypeTXT, FileTypeManual:
		return true
	}
	return false
}

func isValidStatus(s DocumentStatus) bool {
	switch s {
	case StatusProcessing, StatusReady, StatusFailed:
		return true
	}
	return false
}
