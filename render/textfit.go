package render

// Text-fit measurement. Every table renderer sizes its rows through these
// helpers so columns stay aligned despite variable text length. Measurement
// uses the font's real glyph metrics (via the PDF library's line splitter)
// rather than a characters-per-line estimate; results are deterministic for
// a given (text, width, style) triple.

// LineCount reports how many wrapped lines text occupies in a cell of the
// given width under the given style. The empty string still occupies one
// line so empty cells keep their row height.
func (c *Canvas) LineCount(text string, width float64, st CellStyle) int {
	c.applyStyle(st)
	pad := cellPad
	if st.NoMargin {
		pad = 0
	}
	lines := c.pdf.SplitText(c.tr(text), width-2*pad)
	if len(lines) < 1 {
		return 1
	}
	return len(lines)
}

// CellHeight reports the height a cell of the given width consumes for
// text, in multiples of lineH. This is the value callers compare across a
// row's columns to pick the synchronized row height.
func (c *Canvas) CellHeight(text string, width, lineH float64, st CellStyle) float64 {
	return float64(c.LineCount(text, width, st)) * lineH
}

// rowHeight returns the tallest of the measured cell heights, with floor as
// the minimum single-line height.
func rowHeight(floor float64, heights ...float64) float64 {
	h := floor
	for _, v := range heights {
		if v > h {
			h = v
		}
	}
	return h
}
