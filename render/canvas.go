// Package render composes paginated, branded PDF documents from inspection
// report snapshots. The engine is a pure library: it consumes already
// assembled entities and returns a byte stream, with no knowledge of
// databases, sessions, or HTTP transport.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/laudoflow/reportengine/imagesource"
	"github.com/laudoflow/reportengine/layout"
)

const (
	fontFamily = "Helvetica"
	cellPad    = 1.5
	lineHeight = 5.0
)

// ChromeFunc draws recurring page furniture (header or footer). Chrome
// functions are injected at canvas construction and invoked by the canvas
// itself whenever a page begins or ends.
type ChromeFunc func(c *Canvas)

// Canvas owns the drawing cursor, page geometry, and the primitives every
// section renderer builds on. One canvas serves exactly one render; there
// is no shared state across concurrent renders.
type Canvas struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	cfg    layout.Config
	colors palette
	loader *imagesource.Loader

	// coverPages counts leading pages that carry no header or footer.
	coverPages int
	registered map[string]string
}

func newCanvas(cfg layout.Config, colors palette, loader *imagesource.Loader, header, footer ChromeFunc) *Canvas {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(cfg.MarginSide, cfg.MarginTop, cfg.MarginSide)
	pdf.SetAutoPageBreak(true, cfg.MarginBottom)
	pdf.AliasNbPages("")

	c := &Canvas{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		cfg:        cfg,
		colors:     colors,
		loader:     loader,
		registered: map[string]string{},
	}
	if header != nil {
		pdf.SetHeaderFunc(func() {
			if pdf.PageNo() <= c.coverPages {
				return
			}
			header(c)
		})
	}
	if footer != nil {
		pdf.SetFooterFunc(func() {
			if pdf.PageNo() <= c.coverPages {
				return
			}
			footer(c)
		})
	}
	return c
}

// AddCoverPage starts a page that is excluded from header/footer chrome.
// Must be called before any content page.
func (c *Canvas) AddCoverPage() {
	c.coverPages = c.pdf.PageNo() + 1
	c.pdf.AddPage()
}

// AddPage starts a regular content page, triggering the header chrome.
func (c *Canvas) AddPage() {
	c.pdf.AddPage()
}

// ContentWidth is the printable width between the side margins.
func (c *Canvas) ContentWidth() float64 {
	w, _ := c.pdf.GetPageSize()
	return w - 2*c.cfg.MarginSide
}

// PageCount reports how many pages have been started so far.
func (c *Canvas) PageCount() int {
	return c.pdf.PageCount()
}

// XY reports the current cursor position.
func (c *Canvas) XY() (float64, float64) {
	return c.pdf.GetXY()
}

// SetXY moves the cursor to an absolute position.
func (c *Canvas) SetXY(x, y float64) {
	c.pdf.SetXY(x, y)
}

// SetY moves the cursor to the given ordinate and back to the left margin.
func (c *Canvas) SetY(y float64) {
	c.pdf.SetY(y)
}

// Ln advances the cursor h millimeters down and back to the left margin.
func (c *Canvas) Ln(h float64) {
	c.pdf.Ln(h)
}

// MarginLeft is the left page margin.
func (c *Canvas) MarginLeft() float64 {
	return c.cfg.MarginSide
}

// PageSize reports the page dimensions.
func (c *Canvas) PageSize() (w, h float64) {
	return c.pdf.GetPageSize()
}

// EnsureSpace starts a new page (re-invoking the header chrome) when fewer
// than needed millimeters remain above the bottom margin. Reports whether
// a page break happened.
func (c *Canvas) EnsureSpace(needed float64) bool {
	_, pageH := c.pdf.GetPageSize()
	if c.pdf.GetY()+needed > pageH-c.cfg.MarginBottom {
		c.pdf.AddPage()
		return true
	}
	return false
}

// CellStyle selects font, alignment, and coloring for a single cell.
type CellStyle struct {
	Bold     bool
	Italic   bool
	Size     float64 // 0 means the configured base size
	Align    string  // "L", "C", "R"; empty means "L"
	Border   bool
	Fill     bool
	FillRGB  [3]int
	TextRGB  [3]int // zero value means black
	NoMargin bool   // suppress inner horizontal padding
}

func (s CellStyle) fontStyle() string {
	var st string
	if s.Bold {
		st += "B"
	}
	if s.Italic {
		st += "I"
	}
	return st
}

func (s CellStyle) align() string {
	if s.Align == "" {
		return "L"
	}
	return s.Align
}

func (s CellStyle) border() string {
	if s.Border {
		return "1"
	}
	return ""
}

func (c *Canvas) applyStyle(st CellStyle) {
	size := st.Size
	if size == 0 {
		size = c.cfg.FontSizeBase
	}
	c.pdf.SetFont(fontFamily, st.fontStyle(), size)
	c.pdf.SetTextColor(st.TextRGB[0], st.TextRGB[1], st.TextRGB[2])
	if st.Fill {
		c.pdf.SetFillColor(st.FillRGB[0], st.FillRGB[1], st.FillRGB[2])
	}
	if st.Border {
		c.pdf.SetDrawColor(0, 0, 0)
	}
}

// PlaceCell draws text inside a cell of the given width and height. When
// the measured text exceeds the cell width it re-dispatches to wrapped
// multi-line placement; the returned height is the height actually consumed
// (the requested height, or more when the wrapped text outgrows it) and is
// the contract callers rely on to keep subsequent rows vertically aligned.
// The cursor ends at the top-right corner of the cell so row layouts can
// continue with the next column.
func (c *Canvas) PlaceCell(w, h float64, text string, st CellStyle) float64 {
	c.applyStyle(st)
	txt := c.tr(text)
	pad := cellPad
	if st.NoMargin {
		pad = 0
	}

	lines := c.pdf.SplitText(txt, w-2*pad)
	if len(lines) <= 1 {
		c.pdf.CellFormat(w, h, txt, st.border(), 0, st.align(), st.Fill, 0, "")
		return h
	}

	// Wrapped placement. Rows pass their synchronized row height as h, so
	// the cell box is the larger of the requested and the consumed height.
	lineH := math.Min(h, lineHeight)
	boxH := math.Max(h, float64(len(lines))*lineH)

	x, y := c.pdf.GetXY()
	if st.Fill || st.Border {
		style := ""
		if st.Fill {
			style += "F"
		}
		if st.Border {
			style += "D"
		}
		c.pdf.Rect(x, y, w, boxH, style)
	}
	c.pdf.SetXY(x+pad, y)
	c.pdf.MultiCell(w-2*pad, lineH, txt, "", st.align(), false)
	c.pdf.SetXY(x+w, y)
	return boxH
}

// DrawRect draws a rectangle outline or filled box at the given position.
func (c *Canvas) DrawRect(x, y, w, h float64, rgb [3]int, fill bool) {
	if fill {
		c.pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
		c.pdf.Rect(x, y, w, h, "F")
		return
	}
	c.pdf.SetDrawColor(rgb[0], rgb[1], rgb[2])
	c.pdf.Rect(x, y, w, h, "D")
}

// DrawLine draws a straight line in the given color.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64, rgb [3]int) {
	c.pdf.SetDrawColor(rgb[0], rgb[1], rgb[2])
	c.pdf.Line(x1, y1, x2, y2)
}

// DrawDottedLine draws a dotted line, used for fill-in placeholders.
func (c *Canvas) DrawDottedLine(x1, y1, x2, y2 float64, rgb [3]int) {
	c.pdf.SetDrawColor(rgb[0], rgb[1], rgb[2])
	c.pdf.SetDashPattern([]float64{0.8, 1.2}, 0)
	c.pdf.Line(x1, y1, x2, y2)
	c.pdf.SetDashPattern([]float64{}, 0)
}

// PlaceImage resolves source to fetchable bytes and embeds the image with
// its top-left corner at (x, y), scaled to the given width. Any failure is
// logged and the document continues without the image; image loss is never
// fatal to generation. Reports whether the image was placed.
func (c *Canvas) PlaceImage(ctx context.Context, source string, x, y, w, maxH float64) bool {
	if source == "" {
		return false
	}
	name, ok := c.ensureImage(ctx, source)
	if !ok {
		return false
	}
	info := c.pdf.GetImageInfo(name)
	if info == nil || info.Width() <= 0 {
		return false
	}
	h := w * info.Height() / info.Width()
	if maxH > 0 && h > maxH {
		h = maxH
		w = maxH * info.Width() / info.Height()
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: c.registered[source]}, 0, "")
	if c.pdf.Err() {
		slog.Warn("Failed to place image, continuing without it.", "source", source, "error", c.pdf.Error())
		c.pdf.ClearError()
		return false
	}
	return true
}

// ensureImage loads and registers the image behind source exactly once per
// document. Repeated references reuse the registered resource.
func (c *Canvas) ensureImage(ctx context.Context, source string) (string, bool) {
	if typ, ok := c.registered[source]; ok {
		if typ == "" {
			return "", false
		}
		return imageName(source), true
	}

	data, err := c.loader.Load(ctx, source)
	if err != nil {
		slog.Warn("Failed to load image, continuing without it.", "source", source, "error", err)
		c.registered[source] = ""
		return "", false
	}
	typ := sniffImageType(data)
	if typ == "" {
		slog.Warn("Unsupported image format, continuing without it.", "source", source)
		c.registered[source] = ""
		return "", false
	}

	name := imageName(source)
	c.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if c.pdf.Err() {
		slog.Warn("Failed to register image, continuing without it.", "source", source, "error", c.pdf.Error())
		c.pdf.ClearError()
		c.registered[source] = ""
		return "", false
	}
	c.registered[source] = typ
	return name, true
}

func imageName(source string) string {
	return "img:" + source
}

func sniffImageType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}

// Output finalizes the document, substituting the total-page-count alias
// across all footers, and returns the serialized bytes.
func (c *Canvas) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

// palette carries the resolved brand colors.
type palette struct {
	Primary   [3]int
	Secondary [3]int
	Accent    [3]int
}

var defaultPalette = palette{
	Primary:   [3]int{31, 78, 121},
	Secondary: [3]int{102, 102, 102},
	Accent:    [3]int{46, 125, 50},
}

// parseHexColor accepts #RGB and #RRGGBB, falling back to fallback on
// anything it cannot parse.
func parseHexColor(s string, fallback [3]int) [3]int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var rgb [3]int
	switch len(s) {
	case 3:
		for i := 0; i < 3; i++ {
			v, ok := hexNibble(s[i])
			if !ok {
				return fallback
			}
			rgb[i] = v*16 + v
		}
	case 6:
		for i := 0; i < 3; i++ {
			hi, ok1 := hexNibble(s[2*i])
			lo, ok2 := hexNibble(s[2*i+1])
			if !ok1 || !ok2 {
				return fallback
			}
			rgb[i] = hi*16 + lo
		}
	default:
		return fallback
	}
	return rgb
}

func hexNibble(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}
