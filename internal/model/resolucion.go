package model

// TemplateType selects the resolution template.
type TemplateType string

const (
	TemplateInstruccion  TemplateType = "INSTRUCCION"
	TemplateImprocedente TemplateType = "IMPROCEDENTE"
)

// PreviewTemplate is the template tag sent with every PDF preview. The
// preview renders the given content as-is, so the tag is fixed.
const PreviewTemplate = TemplateInstruccion

// String returns the string representation of the template type.
func (t TemplateType) String() string {
	return string(t)
}

// IsValid checks whether the template type is a known value.
func (t TemplateType) IsValid() bool {
	switch t {
	case TemplateInstruccion, TemplateImprocedente:
		return true
	}
	return false
}

// ResolutionDraft is the draft returned by POST /casos/{id}/resolucion.
type ResolutionDraft struct {
	Borrador     string       `json:"borrador"`
	TemplateType TemplateType `json:"template_type"`
}
