// Package events publishes case mutations to NATS so that other consoles
// (casos watch, dashboards) can refresh without polling.
package events

import (
	"context"

	"github.com/alfredjeanlab/casos/internal/model"
)

// Event topic constants
const (
	TopicDocumentUpdated     = "casos.documento.actualizado"
	TopicChecklistUpdated    = "casos.checklist.actualizado"
	TopicResolutionGenerated = "casos.resolucion.generada"
	TopicContextUpdated      = "casos.contexto.actualizado"
	TopicCaseClosed          = "casos.caso.cerrado"

	// TopicAll matches every casos topic.
	TopicAll = "casos.>"
)

// HeaderCaseID carries the affected case on every published message.
const HeaderCaseID = "Casos-Case-Id"

// Event types. Every event records the case and the mode it was made in.

type DocumentUpdated struct {
	CaseID           string             `json:"case_id"`
	Mode             string             `json:"mode"`
	FileID           string             `json:"file_id"`
	Type             model.DocumentType `json:"type"`
	CustomName       string             `json:"custom_name,omitempty"`
	ChecklistUpdated bool               `json:"checklist_updated"`
}

type ChecklistUpdated struct {
	CaseID    string `json:"case_id"`
	Mode      string `json:"mode"`
	ItemID    string `json:"item_id"`
	Validated bool   `json:"validated"`
}

type ResolutionGenerated struct {
	CaseID       string             `json:"case_id"`
	Mode         string             `json:"mode"`
	TemplateType model.TemplateType `json:"template_type"`
}

type ContextUpdated struct {
	CaseID string   `json:"case_id"`
	Mode   string   `json:"mode"`
	Fields []string `json:"fields"` // top-level keys sent in the update
}

type CaseClosed struct {
	CaseID           string           `json:"case_id"`
	Mode             string           `json:"mode"`
	Estado           model.CaseStatus `json:"estado"`
	FechaCierre      string           `json:"fecha_cierre"`
	ResolucionFileID string           `json:"resolucion_file_id,omitempty"`
}

func (e DocumentUpdated) caseRef() string     { return e.CaseID }
func (e ChecklistUpdated) caseRef() string    { return e.CaseID }
func (e ResolutionGenerated) caseRef() string { return e.CaseID }
func (e ContextUpdated) caseRef() string      { return e.CaseID }
func (e CaseClosed) caseRef() string          { return e.CaseID }

// caseEvent is implemented by every event above.
type caseEvent interface {
	caseRef() string
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
