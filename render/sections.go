package render

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/laudoflow/reportengine/report"
)

// renderInput bundles everything a render consumes. All of it is read-only.
type renderInput struct {
	Report       report.Snapshot
	Tenant       report.TenantBranding
	Certificates []report.CertificateRecord
}

type responseKey struct {
	section string
	label   string
}

// indexResponses matches responses to template fields by (section name,
// field label). Responses with no matching template field are dropped by
// the lookups below; the template drives the document shape.
func indexResponses(responses []report.ChecklistResponse) map[responseKey]*report.ChecklistResponse {
	idx := make(map[responseKey]*report.ChecklistResponse, len(responses))
	for i := range responses {
		r := &responses[i]
		idx[responseKey{r.SectionName, r.FieldLabel}] = r
	}
	return idx
}

func sortedSections(t report.TemplateSnapshot) []report.SectionDef {
	sections := append([]report.SectionDef(nil), t.Sections...)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	return sections
}

func sortedFields(s report.SectionDef) []report.FieldDef {
	fields := append([]report.FieldDef(nil), s.Fields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	return fields
}

func sortedInfoFields(t report.TemplateSnapshot) []report.InfoFieldDef {
	fields := append([]report.InfoFieldDef(nil), t.InfoFields...)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	return fields
}

// componentRenderer is the generic, componentized pipeline: info table,
// checklist tables grouped by section, and per-section photo grids.
type componentRenderer struct{}

func (componentRenderer) renderBody(ctx context.Context, c *Canvas, in renderInput) {
	renderSection("info-table", func() {
		renderInfoTable(c, in)
	})
	c.Ln(4)

	idx := indexResponses(in.Report.Responses)
	for _, section := range sortedSections(in.Report.Template) {
		sec := section
		renderSection(fmt.Sprintf("checklist:%s", sec.Name), func() {
			renderChecklistSection(c, sec, idx)
		})
		renderSection(fmt.Sprintf("photos:%s", sec.Name), func() {
			renderSectionPhotos(ctx, c, sec, idx)
		})
	}
}

// renderInfoTable draws one row per info field: bold label cell plus value
// cell, with alternating background fill.
func renderInfoTable(c *Canvas, in renderInput) {
	fields := sortedInfoFields(in.Report.Template)
	if len(fields) == 0 {
		return
	}

	values := make(map[string]string, len(in.Report.InfoValues))
	for _, v := range in.Report.InfoValues {
		values[v.Label] = v.Value
	}

	w := c.ContentWidth()
	labelW := w * 0.32
	valueW := w - labelW

	for i, f := range fields {
		value := orPlaceholder(cleanValue(values[f.Label]))
		fill := i%2 == 1

		rh := rowHeight(lineHeight,
			c.CellHeight(f.Label, labelW, lineHeight, CellStyle{Bold: true}),
			c.CellHeight(value, valueW, lineHeight, CellStyle{}),
		)
		c.EnsureSpace(rh)
		x, y := c.XY()
		c.PlaceCell(labelW, rh, f.Label, CellStyle{Bold: true, Fill: fill, FillRGB: fillAlternate, Border: true})
		c.PlaceCell(valueW, rh, value, CellStyle{Fill: fill, FillRGB: fillAlternate, Border: true})
		c.SetXY(x, y+rh)
	}
}

// renderSectionTitle draws the filled section header bar.
func renderSectionTitle(c *Canvas, name string) {
	c.EnsureSpace(lineHeight * 3)
	c.Ln(2)
	c.PlaceCell(c.ContentWidth(), lineHeight+2, name, CellStyle{
		Bold:    true,
		Size:    c.cfg.FontSizeSection,
		Fill:    true,
		FillRGB: fillSectionHeader,
		TextRGB: c.colors.Primary,
	})
	c.Ln(lineHeight + 2)
}

// renderChecklistSection draws one checklist table: item label, answer with
// semantic color, and a fully wrapped comment column. Row height is the max
// of the label and comment wrap heights so the columns stay synchronized.
func renderChecklistSection(c *Canvas, sec report.SectionDef, idx map[responseKey]*report.ChecklistResponse) {
	fields := sortedFields(sec)
	if len(fields) == 0 {
		return
	}

	type row struct {
		label   string
		value   string
		kind    answerKind
		comment string
	}
	rows := make([]row, 0, len(fields))
	for _, f := range fields {
		resp := idx[responseKey{sec.Name, f.Label}]
		r := row{label: f.Label, value: placeholder, comment: placeholder}
		if resp != nil {
			r.value = orPlaceholder(cleanValue(resp.Value))
			r.kind = classifyAnswer(resp.Value)
			r.comment = orPlaceholder(resp.Comment)
		} else if !c.cfg.Checklist.ShowAllItems {
			continue
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return
	}

	renderSectionTitle(c, sec.Name)

	w := c.ContentWidth()
	labelW := w * 0.45
	valueW := w * 0.15
	commentW := w - labelW - valueW

	headStyle := CellStyle{Bold: true, Align: "C", Fill: true, FillRGB: fillAlternate, Border: true}
	c.EnsureSpace(lineHeight * 2)
	x, y := c.XY()
	c.PlaceCell(labelW, lineHeight, "Item", headStyle)
	c.PlaceCell(valueW, lineHeight, "Resposta", headStyle)
	c.PlaceCell(commentW, lineHeight, "Observações", headStyle)
	c.SetXY(x, y+lineHeight)

	for _, r := range rows {
		rh := rowHeight(lineHeight,
			c.CellHeight(r.label, labelW, lineHeight, CellStyle{}),
			c.CellHeight(r.comment, commentW, lineHeight, CellStyle{}),
		)
		c.EnsureSpace(rh)

		highlight := r.kind == answerNegative && c.cfg.Checklist.HighlightNonConforming
		rowStyle := CellStyle{Border: true, Fill: highlight, FillRGB: fillNonConforming}
		valueStyle := rowStyle
		valueStyle.Align = "C"
		valueStyle.Bold = true
		valueStyle.TextRGB = answerColor(r.kind)

		x, y := c.XY()
		c.PlaceCell(labelW, rh, r.label, rowStyle)
		c.PlaceCell(valueW, rh, r.value, valueStyle)
		c.PlaceCell(commentW, rh, r.comment, rowStyle)
		c.SetXY(x, y+rh)
	}
}

// renderSectionPhotos lays the section's photos out in a fixed-column grid,
// paginating whenever another photo row would overflow the page. Each photo
// carries a caption with its field label and capture timestamp.
func renderSectionPhotos(ctx context.Context, c *Canvas, sec report.SectionDef, idx map[responseKey]*report.ChecklistResponse) {
	var photos []report.PhotoReference
	for _, f := range sortedFields(sec) {
		resp := idx[responseKey{sec.Name, f.Label}]
		if resp == nil {
			continue
		}
		for _, p := range resp.Photos {
			if p.FieldLabel == "" {
				p.FieldLabel = f.Label
			}
			photos = append(photos, p)
			if len(photos) >= c.cfg.PhotoGrid.MaxPerSection {
				break
			}
		}
		if len(photos) >= c.cfg.PhotoGrid.MaxPerSection {
			break
		}
	}
	if len(photos) == 0 {
		return
	}

	cols := c.cfg.PhotoGrid.Columns
	const gutter = 4.0
	const captionH = 9.0
	w := c.ContentWidth()
	cellW := (w - float64(cols-1)*gutter) / float64(cols)
	if c.cfg.PhotoGrid.CellWidth < cellW {
		cellW = c.cfg.PhotoGrid.CellWidth
	}
	cellH := c.cfg.PhotoGrid.CellHeight

	c.Ln(2)
	var rowY float64
	for i, p := range photos {
		col := i % cols
		if col == 0 {
			c.EnsureSpace(cellH + captionH + 2)
			_, rowY = c.XY()
		}
		x := c.MarginLeft() + float64(col)*(cellW+gutter)

		c.DrawRect(x, rowY, cellW, cellH, c.colors.Secondary, false)
		c.PlaceImage(ctx, p.Source, x+1, rowY+1, cellW-2, cellH-2)

		caption := orPlaceholder(p.FieldLabel)
		c.SetXY(x, rowY+cellH+0.5)
		c.PlaceCell(cellW, 3.5, caption, CellStyle{Size: 7, Bold: true, Align: "C", NoMargin: true})
		c.SetXY(x, rowY+cellH+4)
		c.PlaceCell(cellW, 3.5, formatDateTime(p.CapturedAt), CellStyle{Size: 7, Align: "C", TextRGB: c.colors.Secondary, NoMargin: true})

		if col == cols-1 || i == len(photos)-1 {
			c.SetY(rowY + cellH + captionH + 2)
		}
	}
}

// renderCertificateTable draws the fixed six-column calibration certificate
// table with status-driven coloring. Row height follows the three longest
// text columns.
func renderCertificateTable(c *Canvas, certs []report.CertificateRecord) {
	if len(certs) == 0 {
		return
	}
	renderSectionTitle(c, "Certificados de Calibração")

	w := c.ContentWidth()
	widths := []float64{w * 0.22, w * 0.16, w * 0.22, w * 0.12, w * 0.12, w * 0.16}
	headers := []string{"Equipamento", "Certificado", "Laboratório", "Calibração", "Validade", "Situação"}

	headStyle := CellStyle{Bold: true, Align: "C", Fill: true, FillRGB: fillAlternate, Border: true}
	c.EnsureSpace(lineHeight * 2)
	x, y := c.XY()
	for i, h := range headers {
		c.PlaceCell(widths[i], lineHeight, h, headStyle)
	}
	c.SetXY(x, y+lineHeight)

	for _, cert := range certs {
		equipment := orPlaceholder(cert.Equipment)
		number := orPlaceholder(cert.Number)
		lab := orPlaceholder(cert.Laboratory)

		rh := rowHeight(lineHeight,
			c.CellHeight(equipment, widths[0], lineHeight, CellStyle{}),
			c.CellHeight(number, widths[1], lineHeight, CellStyle{}),
			c.CellHeight(lab, widths[2], lineHeight, CellStyle{}),
		)
		c.EnsureSpace(rh)

		x, y := c.XY()
		c.PlaceCell(widths[0], rh, equipment, CellStyle{Border: true})
		c.PlaceCell(widths[1], rh, number, CellStyle{Border: true})
		c.PlaceCell(widths[2], rh, lab, CellStyle{Border: true})
		c.PlaceCell(widths[3], rh, formatDate(cert.CalibratedAt), CellStyle{Border: true, Align: "C"})
		c.PlaceCell(widths[4], rh, formatDate(cert.ExpiresAt), CellStyle{Border: true, Align: "C"})
		c.PlaceCell(widths[5], rh, certificateStatusLabel(cert.Status), CellStyle{
			Border:  true,
			Align:   "C",
			Bold:    true,
			TextRGB: certificateStatusColor(cert.Status),
		})
		c.SetXY(x, y+rh)
	}
}

func certificateStatusLabel(s report.CertificateStatus) string {
	switch s {
	case report.CertificateValid:
		return "Válido"
	case report.CertificateExpiring:
		return "A vencer"
	case report.CertificateExpired:
		return "Vencido"
	}
	return orPlaceholder(string(s))
}

func certificateStatusColor(s report.CertificateStatus) [3]int {
	switch s {
	case report.CertificateValid:
		return colorAffirmative
	case report.CertificateExpiring:
		return colorExpiring
	case report.CertificateExpired:
		return colorNegative
	}
	return [3]int{0, 0, 0}
}

// renderSignatureGrid draws the boxed signature grid: embedded signature
// image, role name, signer name, and the signing timestamp under each box.
func renderSignatureGrid(ctx context.Context, c *Canvas, sigs []report.SignatureRecord) {
	if len(sigs) == 0 {
		return
	}
	renderSectionTitle(c, "Assinaturas")

	cols := c.cfg.Signatures.Columns
	const gutter = 6.0
	const legendH = 13.0
	w := c.ContentWidth()
	boxW := (w - float64(cols-1)*gutter) / float64(cols)
	if c.cfg.Signatures.BoxWidth < boxW {
		boxW = c.cfg.Signatures.BoxWidth
	}
	boxH := c.cfg.Signatures.BoxHeight

	var rowY float64
	for i, sig := range sigs {
		col := i % cols
		if col == 0 {
			c.EnsureSpace(boxH + legendH + 2)
			_, rowY = c.XY()
		}
		x := c.MarginLeft() + float64(col)*(boxW+gutter)

		c.DrawRect(x, rowY, boxW, boxH, c.colors.Secondary, false)
		if sig.ImageSource != "" {
			c.PlaceImage(ctx, sig.ImageSource, x+4, rowY+3, boxW-8, boxH-6)
		}

		c.SetXY(x, rowY+boxH+1)
		c.PlaceCell(boxW, 4, strings.ToUpper(sig.RoleName), CellStyle{Size: 8, Bold: true, Align: "C", NoMargin: true})
		c.SetXY(x, rowY+boxH+5)
		c.PlaceCell(boxW, 4, orPlaceholder(sig.SignerName), CellStyle{Size: 8, Align: "C", NoMargin: true})
		c.SetXY(x, rowY+boxH+9)
		c.PlaceCell(boxW, 4, formatDateTime(sig.SignedAt), CellStyle{Size: 7, Align: "C", TextRGB: c.colors.Secondary, NoMargin: true})

		if col == cols-1 || i == len(sigs)-1 {
			c.SetY(rowY + boxH + legendH + 2)
		}
	}
}
