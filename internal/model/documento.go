package model

// DocumentType classifies a document attached to a case.
type DocumentType string

const (
	DocCartaRespuesta       DocumentType = "CARTA_RESPUESTA"
	DocOrdenTrabajo         DocumentType = "ORDEN_TRABAJO"
	DocTablaCalculo         DocumentType = "TABLA_CALCULO"
	DocEvidenciaFotografica DocumentType = "EVIDENCIA_FOTOGRAFICA"
	DocGraficoConsumo       DocumentType = "GRAFICO_CONSUMO"
	DocInformeCNR           DocumentType = "INFORME_CNR"
	DocOtros                DocumentType = "OTROS"
)

// DocumentTypes lists every known document type in display order.
var DocumentTypes = []DocumentType{
	DocCartaRespuesta,
	DocOrdenTrabajo,
	DocTablaCalculo,
	DocEvidenciaFotografica,
	DocGraficoConsumo,
	DocInformeCNR,
	DocOtros,
}

// String returns the string representation of the document type.
func (t DocumentType) String() string {
	return string(t)
}

// IsValid checks whether the document type is a known value.
func (t DocumentType) IsValid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Document is one file in a case's inventory.
type Document struct {
	Type             DocumentType   `json:"type"`
	FileID           string         `json:"file_id"`
	OriginalName     string         `json:"original_name"`
	StandardizedName *string        `json:"standardized_name,omitempty"`
	ExtractedData    map[string]any `json:"extracted_data,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// DisplayName prefers the standardized name over the uploaded one.
func (d *Document) DisplayName() string {
	if d.StandardizedName != nil && *d.StandardizedName != "" {
		return *d.StandardizedName
	}
	return d.OriginalName
}

// MissingDocument is an expected document the case does not have yet.
type MissingDocument struct {
	RequiredType string `json:"required_type"`
	AlertLevel   string `json:"alert_level"`
	Description  string `json:"description"`
}

// DocumentInventory groups a case's documents. The functional categories are
// the current layout; the level_* lists are kept for older case files.
type DocumentInventory struct {
	ReclamoRespuesta  []Document `json:"reclamo_respuesta,omitempty"`
	InformeEvidencias []Document `json:"informe_evidencias,omitempty"`
	HistorialCalculos []Document `json:"historial_calculos,omitempty"`
	Otros             []Document `json:"otros,omitempty"`

	Level1Critical   []Document        `json:"level_1_critical"`
	Level2Supporting []Document        `json:"level_2_supporting"`
	Level0Missing    []MissingDocument `json:"level_0_missing"`
}

// All returns every document of the inventory, functional categories first.
// A document listed in both layouts is returned once.
func (inv *DocumentInventory) All() []Document {
	seen := map[string]bool{}
	var out []Document
	for _, group := range [][]Document{
		inv.ReclamoRespuesta,
		inv.InformeEvidencias,
		inv.HistorialCalculos,
		inv.Otros,
		inv.Level1Critical,
		inv.Level2Supporting,
	} {
		for _, d := range group {
			if d.FileID != "" && seen[d.FileID] {
				continue
			}
			seen[d.FileID] = true
			out = append(out, d)
		}
	}
	return out
}
