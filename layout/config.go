// Package layout resolves per-tenant document style configuration.
//
// Tenants store a partial JSON style document; Resolve merges it with the
// hard-coded defaults so every downstream renderer sees a fully populated
// Config and never checks for missing fields.
package layout

import "encoding/json"

// Style selects the rendering pipeline.
type Style string

const (
	StyleDefault  Style = "default"
	StyleProtocol Style = "protocol"
)

// Config is a fully resolved style document. Every field is populated.
type Config struct {
	Style Style

	FontSizeBase    float64
	FontSizeHeader  float64
	FontSizeSection float64

	MarginTop    float64
	MarginSide   float64
	MarginBottom float64

	PhotoGrid  PhotoGridConfig
	Checklist  ChecklistConfig
	Signatures SignatureGridConfig

	CertificateTable bool
	CoverPage        bool
}

type PhotoGridConfig struct {
	Columns       int
	MaxPerSection int
	CellWidth     float64
	CellHeight    float64
}

type ChecklistConfig struct {
	ShowAllItems           bool
	HighlightNonConforming bool
}

type SignatureGridConfig struct {
	Columns   int
	BoxWidth  float64
	BoxHeight float64
}

// Partial is the wire shape of a tenant style document. Pointer fields
// distinguish "absent" from explicit zero values; unknown JSON fields are
// ignored by encoding/json.
type Partial struct {
	Style           *string  `json:"style,omitempty"`
	FontSizeBase    *float64 `json:"fontSizeBase,omitempty"`
	FontSizeHeader  *float64 `json:"fontSizeHeader,omitempty"`
	FontSizeSection *float64 `json:"fontSizeSection,omitempty"`
	MarginTop       *float64 `json:"marginTop,omitempty"`
	MarginSide      *float64 `json:"marginSide,omitempty"`
	MarginBottom    *float64 `json:"marginBottom,omitempty"`

	PhotoGrid *struct {
		Columns       *int     `json:"columns,omitempty"`
		MaxPerSection *int     `json:"maxPerSection,omitempty"`
		CellWidth     *float64 `json:"cellWidth,omitempty"`
		CellHeight    *float64 `json:"cellHeight,omitempty"`
	} `json:"photoGrid,omitempty"`

	Checklist *struct {
		ShowAllItems           *bool `json:"showAllItems,omitempty"`
		HighlightNonConforming *bool `json:"highlightNonConforming,omitempty"`
	} `json:"checklist,omitempty"`

	Signatures *struct {
		Columns   *int     `json:"columns,omitempty"`
		BoxWidth  *float64 `json:"boxWidth,omitempty"`
		BoxHeight *float64 `json:"boxHeight,omitempty"`
	} `json:"signatures,omitempty"`

	CertificateTable *bool `json:"certificateTable,omitempty"`
	CoverPage        *bool `json:"coverPage,omitempty"`
}

// Default returns the built-in style document.
func Default() Config {
	return Config{
		Style:           StyleDefault,
		FontSizeBase:    9,
		FontSizeHeader:  14,
		FontSizeSection: 11,
		MarginTop:       15,
		MarginSide:      12,
		MarginBottom:    18,
		PhotoGrid: PhotoGridConfig{
			Columns:       2,
			MaxPerSection: 20,
			CellWidth:     85,
			CellHeight:    65,
		},
		Checklist: ChecklistConfig{
			ShowAllItems:           true,
			HighlightNonConforming: true,
		},
		Signatures: SignatureGridConfig{
			Columns:   2,
			BoxWidth:  85,
			BoxHeight: 40,
		},
		CertificateTable: true,
		CoverPage:        true,
	}
}

// Resolve merges a partial style document into the defaults. It is total:
// a nil partial, an empty document, or garbage field values all yield a
// complete Config and never an error.
func Resolve(p *Partial) Config {
	cfg := Default()
	if p == nil {
		return cfg
	}

	if p.Style != nil && Style(*p.Style) == StyleProtocol {
		cfg.Style = StyleProtocol
	}
	setPositive(&cfg.FontSizeBase, p.FontSizeBase)
	setPositive(&cfg.FontSizeHeader, p.FontSizeHeader)
	setPositive(&cfg.FontSizeSection, p.FontSizeSection)
	setPositive(&cfg.MarginTop, p.MarginTop)
	setPositive(&cfg.MarginSide, p.MarginSide)
	setPositive(&cfg.MarginBottom, p.MarginBottom)

	if pg := p.PhotoGrid; pg != nil {
		setPositiveInt(&cfg.PhotoGrid.Columns, pg.Columns)
		setPositiveInt(&cfg.PhotoGrid.MaxPerSection, pg.MaxPerSection)
		setPositive(&cfg.PhotoGrid.CellWidth, pg.CellWidth)
		setPositive(&cfg.PhotoGrid.CellHeight, pg.CellHeight)
	}
	if cl := p.Checklist; cl != nil {
		setBool(&cfg.Checklist.ShowAllItems, cl.ShowAllItems)
		setBool(&cfg.Checklist.HighlightNonConforming, cl.HighlightNonConforming)
	}
	if sg := p.Signatures; sg != nil {
		setPositiveInt(&cfg.Signatures.Columns, sg.Columns)
		setPositive(&cfg.Signatures.BoxWidth, sg.BoxWidth)
		setPositive(&cfg.Signatures.BoxHeight, sg.BoxHeight)
	}
	setBool(&cfg.CertificateTable, p.CertificateTable)
	setBool(&cfg.CoverPage, p.CoverPage)
	return cfg
}

// ParsePartial decodes a raw tenant style document. Empty or malformed
// JSON yields nil, which Resolve treats as "use the defaults".
func ParsePartial(raw []byte) *Partial {
	if len(raw) == 0 {
		return nil
	}
	var p Partial
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

// ResolveJSON parses a raw tenant style document and resolves it. Malformed
// or empty JSON falls back to the defaults rather than failing the render.
func ResolveJSON(raw []byte) Config {
	return Resolve(ParsePartial(raw))
}

func setPositive(dst *float64, src *float64) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

func setPositiveInt(dst *int, src *int) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
