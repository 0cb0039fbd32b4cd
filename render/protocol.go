package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/laudoflow/reportengine/report"
)

// Protocol pipeline: the fixed-structure layout selected by the "protocol"
// style. Its defining step is pattern-based field grouping — labels of the
// form "{ROW} - {COLUMN}" are parsed into an implicit matrix before any
// drawing occurs, so the inference is testable independently of the canvas.

// fieldEntry is one responded field, label plus cleaned value.
type fieldEntry struct {
	Label string
	Value string
}

// labelMatrix is the strongly typed intermediate produced by pattern
// grouping. Row and column order is first-seen order.
type labelMatrix struct {
	Rows  []string
	Cols  []string
	cells map[string]map[string]string
}

// Value returns the cell for (row, col), blank when the field never
// appeared for that combination.
func (m *labelMatrix) Value(row, col string) string {
	if m.cells[row] == nil {
		return ""
	}
	return m.cells[row][col]
}

// buildLabelMatrix splits every entry label on its last " - " separator and
// groups the results into rows and columns. Entries lacking the separator
// are returned as leftovers; when no entry matches at all the matrix is nil
// and the caller falls back to the generic instrument-data rendering.
func buildLabelMatrix(entries []fieldEntry) (*labelMatrix, []fieldEntry) {
	m := &labelMatrix{cells: map[string]map[string]string{}}
	var leftovers []fieldEntry
	seenRow := map[string]bool{}
	seenCol := map[string]bool{}

	for _, e := range entries {
		i := strings.LastIndex(e.Label, " - ")
		if i < 0 {
			leftovers = append(leftovers, e)
			continue
		}
		row := strings.TrimSpace(e.Label[:i])
		col := strings.TrimSpace(e.Label[i+3:])
		if row == "" || col == "" {
			leftovers = append(leftovers, e)
			continue
		}
		if !seenRow[row] {
			seenRow[row] = true
			m.Rows = append(m.Rows, row)
		}
		if !seenCol[col] {
			seenCol[col] = true
			m.Cols = append(m.Cols, col)
		}
		if m.cells[row] == nil {
			m.cells[row] = map[string]string{}
		}
		m.cells[row][col] = e.Value
	}

	if len(m.Rows) == 0 {
		return nil, leftovers
	}
	return m, leftovers
}

type protocolRenderer struct{}

func (protocolRenderer) renderBody(ctx context.Context, c *Canvas, in renderInput) {
	renderSection("info-pairs", func() {
		renderInfoPairs(c, in)
	})
	c.Ln(3)

	idx := indexResponses(in.Report.Responses)
	for _, section := range sortedSections(in.Report.Template) {
		sec := section
		renderSection(fmt.Sprintf("protocol:%s", sec.Name), func() {
			renderProtocolSection(c, sec, idx)
		})
		renderSection(fmt.Sprintf("photos:%s", sec.Name), func() {
			renderSectionPhotos(ctx, c, sec, idx)
		})
	}
}

// renderInfoPairs draws the info fields as two label/value pairs per row,
// the compact header block of the protocol sheet.
func renderInfoPairs(c *Canvas, in renderInput) {
	fields := sortedInfoFields(in.Report.Template)
	if len(fields) == 0 {
		return
	}
	values := make(map[string]string, len(in.Report.InfoValues))
	for _, v := range in.Report.InfoValues {
		values[v.Label] = v.Value
	}

	w := c.ContentWidth()
	pairW := w / 2
	labelW := pairW * 0.42
	valueW := pairW - labelW

	for i := 0; i < len(fields); i += 2 {
		rh := lineHeight
		for j := i; j < i+2 && j < len(fields); j++ {
			f := fields[j]
			rh = rowHeight(rh,
				c.CellHeight(f.Label, labelW, lineHeight, CellStyle{Bold: true}),
				c.CellHeight(orPlaceholder(cleanValue(values[f.Label])), valueW, lineHeight, CellStyle{}),
			)
		}
		c.EnsureSpace(rh)
		x, y := c.XY()
		for j := i; j < i+2 && j < len(fields); j++ {
			f := fields[j]
			c.PlaceCell(labelW, rh, f.Label, CellStyle{Bold: true, Border: true, Fill: true, FillRGB: fillAlternate})
			c.PlaceCell(valueW, rh, orPlaceholder(cleanValue(values[f.Label])), CellStyle{Border: true})
		}
		c.SetXY(x, y+rh)
	}
}

// sectionEntries collects the responded fields of a section, in template
// field order, with values cleaned of array-literal punctuation.
func sectionEntries(sec report.SectionDef, idx map[responseKey]*report.ChecklistResponse) []fieldEntry {
	var entries []fieldEntry
	for _, f := range sortedFields(sec) {
		resp := idx[responseKey{sec.Name, f.Label}]
		if resp == nil {
			continue
		}
		entries = append(entries, fieldEntry{Label: f.Label, Value: cleanValue(resp.Value)})
	}
	return entries
}

// renderProtocolSection picks the section's layout: the measured-values
// matrix when labels follow the "{ROW} - {COLUMN}" convention, a condensed
// general-condition checklist when every value is a conformity answer, and
// the instrument-data triple layout otherwise. A section with no pattern
// match at all falls back wholesale to the generic layouts.
func renderProtocolSection(c *Canvas, sec report.SectionDef, idx map[responseKey]*report.ChecklistResponse) {
	entries := sectionEntries(sec, idx)
	if len(entries) == 0 {
		return
	}
	renderSectionTitle(c, sec.Name)

	matrix, rest := buildLabelMatrix(entries)
	if matrix == nil {
		if allConformity(entries) {
			renderConditionChecklist(c, entries)
		} else {
			renderInstrumentTriples(c, entries)
		}
		return
	}

	renderMeasuredValuesMatrix(c, matrix)
	if len(rest) > 0 {
		c.Ln(2)
		renderInstrumentTriples(c, rest)
	}
}

func allConformity(entries []fieldEntry) bool {
	for _, e := range entries {
		if classifyAnswer(e.Value) == answerOther {
			return false
		}
	}
	return true
}

// renderMeasuredValuesMatrix draws the inferred matrix: row names down the
// first column, inferred column names across the header, blank cells where
// a row never saw a column.
func renderMeasuredValuesMatrix(c *Canvas, m *labelMatrix) {
	w := c.ContentWidth()
	rowNameW := w * 0.28
	colW := (w - rowNameW) / float64(len(m.Cols))

	headStyle := CellStyle{Bold: true, Align: "C", Fill: true, FillRGB: fillAlternate, Border: true}
	c.EnsureSpace(lineHeight * 2)
	x, y := c.XY()
	c.PlaceCell(rowNameW, lineHeight, "", headStyle)
	for _, col := range m.Cols {
		c.PlaceCell(colW, lineHeight, col, headStyle)
	}
	c.SetXY(x, y+lineHeight)

	for _, row := range m.Rows {
		rh := rowHeight(lineHeight, c.CellHeight(row, rowNameW, lineHeight, CellStyle{Bold: true}))
		for _, col := range m.Cols {
			rh = rowHeight(rh, c.CellHeight(m.Value(row, col), colW, lineHeight, CellStyle{}))
		}
		c.EnsureSpace(rh)

		x, y := c.XY()
		c.PlaceCell(rowNameW, rh, row, CellStyle{Bold: true, Border: true})
		for _, col := range m.Cols {
			c.PlaceCell(colW, rh, m.Value(row, col), CellStyle{Border: true, Align: "C"})
		}
		c.SetXY(x, y+rh)
	}
}

// renderInstrumentTriples lays fields out three to a row, each cell a bold
// label over its value. This is the protocol fallback for fields that do
// not participate in any inferred matrix.
func renderInstrumentTriples(c *Canvas, entries []fieldEntry) {
	const cols = 3
	w := c.ContentWidth()
	cellW := w / cols
	const labelH = 3.8

	for i := 0; i < len(entries); i += cols {
		rh := lineHeight
		for j := i; j < i+cols && j < len(entries); j++ {
			rh = rowHeight(rh, c.CellHeight(orPlaceholder(entries[j].Value), cellW, lineHeight, CellStyle{}))
		}
		c.EnsureSpace(labelH + rh)

		x, y := c.XY()
		for j := i; j < i+cols && j < len(entries); j++ {
			cx := x + float64(j-i)*cellW
			c.DrawRect(cx, y, cellW, labelH+rh, c.colors.Secondary, false)
			c.SetXY(cx, y)
			c.PlaceCell(cellW, labelH, entries[j].Label, CellStyle{Size: 7, Bold: true, TextRGB: c.colors.Secondary})
			c.SetXY(cx, y+labelH)
			c.PlaceCell(cellW, rh, orPlaceholder(entries[j].Value), CellStyle{})
		}
		c.SetXY(x, y+labelH+rh)
	}
}

// renderConditionChecklist draws the condensed two-column general-condition
// table used when a section holds only conformity answers.
func renderConditionChecklist(c *Canvas, entries []fieldEntry) {
	w := c.ContentWidth()
	labelW := w * 0.75
	valueW := w - labelW

	for i, e := range entries {
		value := orPlaceholder(e.Value)
		kind := classifyAnswer(e.Value)
		rh := rowHeight(lineHeight, c.CellHeight(e.Label, labelW, lineHeight, CellStyle{}))
		c.EnsureSpace(rh)

		fill := i%2 == 1
		x, y := c.XY()
		c.PlaceCell(labelW, rh, e.Label, CellStyle{Border: true, Fill: fill, FillRGB: fillAlternate})
		c.PlaceCell(valueW, rh, value, CellStyle{
			Border:  true,
			Align:   "C",
			Bold:    true,
			TextRGB: answerColor(kind),
			Fill:    fill,
			FillRGB: fillAlternate,
		})
		c.SetXY(x, y+rh)
	}
}
