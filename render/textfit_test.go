package render

import (
	"strings"
	"testing"

	"github.com/laudoflow/reportengine/imagesource"
	"github.com/laudoflow/reportengine/layout"
)

func newTestCanvas() *Canvas {
	c := newCanvas(layout.Default(), defaultPalette, &imagesource.Loader{}, nil, nil)
	c.AddPage()
	return c
}

func TestLineCountDeterministic(t *testing.T) {
	text := strings.Repeat("medição de resistência de isolamento ", 6)
	const width = 60.0

	c := newTestCanvas()
	first := c.LineCount(text, width, CellStyle{})
	for i := 0; i < 10; i++ {
		if got := c.LineCount(text, width, CellStyle{}); got != first {
			t.Fatalf("call %d: LineCount = %d, want %d", i, got, first)
		}
	}

	// A fresh canvas must agree: the measurement depends only on
	// (text, width, style), never on drawing history.
	other := newTestCanvas()
	if got := other.LineCount(text, width, CellStyle{}); got != first {
		t.Errorf("fresh canvas LineCount = %d, want %d", got, first)
	}
}

func TestLineCount(t *testing.T) {
	c := newTestCanvas()
	tests := []struct {
		name  string
		text  string
		width float64
		check func(t *testing.T, lines int)
	}{
		{
			name:  "empty text still occupies one line",
			text:  "",
			width: 60,
			check: func(t *testing.T, lines int) {
				if lines != 1 {
					t.Errorf("lines = %d, want 1", lines)
				}
			},
		},
		{
			name:  "short text fits on one line",
			text:  "Sim",
			width: 60,
			check: func(t *testing.T, lines int) {
				if lines != 1 {
					t.Errorf("lines = %d, want 1", lines)
				}
			},
		},
		{
			name:  "long text wraps",
			text:  strings.Repeat("verificação ", 20),
			width: 40,
			check: func(t *testing.T, lines int) {
				if lines < 2 {
					t.Errorf("lines = %d, want at least 2", lines)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, c.LineCount(tt.text, tt.width, CellStyle{}))
		})
	}
}

func TestCellHeightScalesWithLines(t *testing.T) {
	c := newTestCanvas()
	long := strings.Repeat("inspeção ", 30)

	short := c.CellHeight("ok", 50, lineHeight, CellStyle{})
	tall := c.CellHeight(long, 50, lineHeight, CellStyle{})
	if short != lineHeight {
		t.Errorf("single-line height = %v, want %v", short, lineHeight)
	}
	if tall <= short {
		t.Errorf("wrapped height %v should exceed single-line height %v", tall, short)
	}
	lines := c.LineCount(long, 50, CellStyle{})
	if want := float64(lines) * lineHeight; tall != want {
		t.Errorf("CellHeight = %v, want lines*lineHeight = %v", tall, want)
	}
}

func TestPlaceCellReturnsConsumedHeight(t *testing.T) {
	c := newTestCanvas()

	if got := c.PlaceCell(60, lineHeight, "curto", CellStyle{}); got != lineHeight {
		t.Errorf("single-line PlaceCell consumed %v, want %v", got, lineHeight)
	}

	long := strings.Repeat("continuidade ", 15)
	want := c.CellHeight(long, 60, lineHeight, CellStyle{})
	c.SetY(40)
	if got := c.PlaceCell(60, lineHeight, long, CellStyle{}); got != want {
		t.Errorf("wrapped PlaceCell consumed %v, want measured %v", got, want)
	}
}

func TestRowHeight(t *testing.T) {
	if got := rowHeight(5, 3, 4); got != 5 {
		t.Errorf("rowHeight floor = %v, want 5", got)
	}
	if got := rowHeight(5, 15, 10); got != 15 {
		t.Errorf("rowHeight = %v, want 15", got)
	}
}
