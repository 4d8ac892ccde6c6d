// Package client provides a transport-agnostic interface for the casos API
// and an HTTP/JSON implementation that talks to the casos REST backend.
package client

import (
	"context"

	"github.com/alfredjeanlab/casos/internal/model"
)

// CasosClient is the interface that the CLI commands and views use to
// communicate with the casos backend. It is implemented by HTTPClient.
type CasosClient interface {
	// Cases
	ListCases(ctx context.Context, req *ListCasesRequest) ([]model.CaseSummary, error)
	SearchCases(ctx context.Context, query string) ([]model.CaseSummary, error)
	GetCase(ctx context.Context, caseID string) (*model.Expediente, error)

	// Documents
	UpdateDocument(ctx context.Context, caseID, fileID string, docType model.DocumentType, customName string) (*DocumentUpdateResult, error)
	PreviewDocument(ctx context.Context, caseID, fileID, format string) (*File, error)

	// Checklist
	UpdateChecklistItem(ctx context.Context, caseID, itemID string, validated bool) (*ChecklistUpdateResult, error)

	// Resolution
	GenerateResolution(ctx context.Context, caseID string, templateType model.TemplateType, content string) (*model.ResolutionDraft, error)
	PreviewResolutionPDF(ctx context.Context, caseID, content string) (*File, error)
	CleanupResolutionPreviews(ctx context.Context, caseID string) (*MessageResult, error)

	// Context and closure
	UpdateUnifiedContext(ctx context.Context, caseID string, updates any) (*ContextUpdateResult, error)
	CloseCase(ctx context.Context, caseID, content string) (*CloseCaseResult, error)

	// Lifecycle
	Close() error
}

// ModeProvider supplies the mode attached to every request. Mode is called
// once per request, so a changed value takes effect on the next call.
type ModeProvider interface {
	Mode() string
}

// ModeFunc adapts an ordinary function to ModeProvider.
type ModeFunc func() string

// Mode calls f.
func (f ModeFunc) Mode() string { return f() }

// StaticMode is a ModeProvider that always returns the same value.
type StaticMode string

// Mode returns m.
func (m StaticMode) Mode() string { return string(m) }

// ListCasesRequest holds the optional filters for listing cases.
// Zero values mean "not set"; Page and PageSize default to 1 and 100.
type ListCasesRequest struct {
	Query     string
	CaseType  string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Defaults applied by ListCases when Page or PageSize are zero.
const (
	DefaultPage     = 1
	DefaultPageSize = 100
)

// DocumentUpdateResult is the response from UpdateDocument.
type DocumentUpdateResult struct {
	Message           string                   `json:"message"`
	ChecklistUpdated  bool                     `json:"checklist_updated"`
	Checklist         *model.Checklist         `json:"checklist,omitempty"`
	Document          *model.Document          `json:"document,omitempty"`
	DocumentInventory *model.DocumentInventory `json:"document_inventory,omitempty"`
}

// ChecklistUpdateResult is the response from UpdateChecklistItem.
type ChecklistUpdateResult struct {
	Message string               `json:"message"`
	Item    *model.ChecklistItem `json:"item,omitempty"`
}

// ContextUpdateResult is the response from UpdateUnifiedContext.
type ContextUpdateResult struct {
	Message string `json:"message"`
	CaseID  string `json:"case_id"`
}

// CloseCaseResult is the response from CloseCase.
type CloseCaseResult struct {
	Message          string           `json:"message"`
	CaseID           string           `json:"case_id"`
	Estado           model.CaseStatus `json:"estado"`
	FechaCierre      string           `json:"fecha_cierre"`
	ResolucionFileID string           `json:"resolucion_file_id,omitempty"`
}

// MessageResult is the response of endpoints that only acknowledge.
type MessageResult struct {
	Message string `json:"message"`
}

// File is a binary response body (PDF previews, document previews).
type File struct {
	ContentType string
	Filename    string
	Data        []byte
}
