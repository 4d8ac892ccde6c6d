package model

import "encoding/json"

// Mode selects which data set the casos backend serves.
type Mode string

const (
	ModeValidate Mode = "validate"
	ModeTest     Mode = "test"
)

// DefaultMode is used whenever no mode has been stored.
const DefaultMode = ModeValidate

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether the mode is a non-empty string.
// Modes are application-defined; the backend falls back to validate for
// values it does not know.
func (m Mode) IsValid() bool {
	return m != ""
}

// CaseStatus represents the lifecycle state of a case.
type CaseStatus string

const (
	StatusPendiente  CaseStatus = "PENDIENTE"
	StatusEnRevision CaseStatus = "EN_REVISION"
	StatusResuelto   CaseStatus = "RESUELTO"
	StatusCerrado    CaseStatus = "CERRADO"
)

// String returns the string representation of the status.
func (s CaseStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s CaseStatus) IsValid() bool {
	switch s {
	case StatusPendiente, StatusEnRevision, StatusResuelto, StatusCerrado:
		return true
	}
	return false
}

// CaseSummary is one row of the case list.
type CaseSummary struct {
	CaseID       string     `json:"case_id"`
	ClientName   string     `json:"client_name"`
	RutClient    string     `json:"rut_client"`
	Materia      string     `json:"materia"`
	MontoDisputa float64    `json:"monto_disputa"`
	Status       CaseStatus `json:"status"`
	FechaIngreso string     `json:"fecha_ingreso"`
	Empresa      string     `json:"empresa"`
}

// CompilationMetadata describes how and when a case file was assembled.
type CompilationMetadata struct {
	CaseID              string `json:"case_id"`
	ProcessingTimestamp string `json:"processing_timestamp"`
	Status              string `json:"status"`
	TipoCaso            string `json:"tipo_caso,omitempty"`
}

// UnifiedContext holds the claimant and supply data shared by every document
// of a case.
type UnifiedContext struct {
	RutClient       string  `json:"rut_client"`
	ClientName      string  `json:"client_name"`
	ServiceNIS      string  `json:"service_nis"`
	AddressStandard *string `json:"address_standard,omitempty"`
	Commune         string  `json:"commune"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
}

// Expediente is the normalized digital case file returned by GET /casos/{id}.
type Expediente struct {
	CompilationMetadata CompilationMetadata         `json:"compilation_metadata"`
	UnifiedContext      UnifiedContext              `json:"unified_context"`
	DocumentInventory   DocumentInventory           `json:"document_inventory"`
	ConsolidatedFacts   map[string]any              `json:"consolidated_facts,omitempty"`
	EvidenceMap         map[string][]map[string]any `json:"evidence_map,omitempty"`
	Checklist           *Checklist                  `json:"checklist,omitempty"`
	Materia             *string                     `json:"materia,omitempty"`
	MontoDisputa        *float64                    `json:"monto_disputa,omitempty"`
	Empresa             *string                     `json:"empresa,omitempty"`
	FechaIngreso        *string                     `json:"fecha_ingreso,omitempty"`
	Alertas             []string                    `json:"alertas,omitempty"`
}

// CaseID returns the identifier recorded in the compilation metadata.
func (e *Expediente) CaseID() string {
	return e.CompilationMetadata.CaseID
}

// ContextUpdate is the body of PUT /casos/{id}/contexto. The backend accepts
// any subset of these keys; callers may also send a raw map.
type ContextUpdate struct {
	UnifiedContext map[string]any `json:"unified_context,omitempty"`
	Materia        *string        `json:"materia,omitempty"`
	MontoDisputa   *float64       `json:"monto_disputa,omitempty"`
	Empresa        *string        `json:"empresa,omitempty"`
	FechaIngreso   *string        `json:"fecha_ingreso,omitempty"`
}

// Fields flattens the update into the map form sent on the wire.
func (u ContextUpdate) Fields() (map[string]any, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
