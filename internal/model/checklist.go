package model

// ChecklistStatus is the automatic verdict on a checklist item.
type ChecklistStatus string

const (
	ChecklistCumple         ChecklistStatus = "CUMPLE"
	ChecklistNoCumple       ChecklistStatus = "NO_CUMPLE"
	ChecklistRevisionManual ChecklistStatus = "REVISION_MANUAL"
)

// String returns the string representation of the checklist status.
func (s ChecklistStatus) String() string {
	return string(s)
}

// IsValid checks whether the checklist status is a known value.
func (s ChecklistStatus) IsValid() bool {
	switch s {
	case ChecklistCumple, ChecklistNoCumple, ChecklistRevisionManual:
		return true
	}
	return false
}

// ChecklistItem is one verification step of a case.
type ChecklistItem struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Status       ChecklistStatus `json:"status"`
	Evidence     *string         `json:"evidence,omitempty"`
	EvidenceType *string         `json:"evidence_type,omitempty"`
	Validated    bool            `json:"validated"`
	Description  *string         `json:"description,omitempty"`
	EvidenceData map[string]any  `json:"evidence_data,omitempty"`
	RuleRef      *string         `json:"rule_ref,omitempty"`
}

// Checklist groups checklist items. Group A-C is the current layout; the
// other groups appear in older case files.
type Checklist struct {
	GroupAAdmisibilidad []ChecklistItem `json:"group_a_admisibilidad,omitempty"`
	GroupBInstruccion   []ChecklistItem `json:"group_b_instruccion,omitempty"`
	GroupCAnalisis      []ChecklistItem `json:"group_c_analisis,omitempty"`
	Metadata            map[string]any  `json:"metadata,omitempty"`

	ClientInformation []ChecklistItem `json:"client_information,omitempty"`
	EvidenceReview    []ChecklistItem `json:"evidence_review,omitempty"`
	LegalCompliance   []ChecklistItem `json:"legal_compliance,omitempty"`
}

// ChecklistGroup is a named slice of checklist items, in display order.
type ChecklistGroup struct {
	Name  string
	Items []ChecklistItem
}

// Groups returns the non-empty groups of the checklist.
func (c *Checklist) Groups() []ChecklistGroup {
	all := []ChecklistGroup{
		{Name: "group_a_admisibilidad", Items: c.GroupAAdmisibilidad},
		{Name: "group_b_instruccion", Items: c.GroupBInstruccion},
		{Name: "group_c_analisis", Items: c.GroupCAnalisis},
		{Name: "client_information", Items: c.ClientInformation},
		{Name: "evidence_review", Items: c.EvidenceReview},
		{Name: "legal_compliance", Items: c.LegalCompliance},
	}
	var out []ChecklistGroup
	for _, g := range all {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Pending counts items that have not been validated by a reviewer.
func (c *Checklist) Pending() int {
	n := 0
	for _, g := range c.Groups() {
		for _, it := range g.Items {
			if !it.Validated {
				n++
			}
		}
	}
	return n
}
