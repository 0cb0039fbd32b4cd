package layout

import "testing"

func TestResolveNilIsFullyPopulated(t *testing.T) {
	cfg := Resolve(nil)
	if cfg != Default() {
		t.Errorf("Resolve(nil) = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Style != StyleDefault {
		t.Errorf("Style = %q, want %q", cfg.Style, StyleDefault)
	}
	if cfg.PhotoGrid.Columns <= 0 || cfg.Signatures.Columns <= 0 {
		t.Errorf("grid columns must default to positive values: %+v", cfg)
	}
	if cfg.FontSizeBase <= 0 || cfg.MarginTop <= 0 || cfg.MarginBottom <= 0 {
		t.Errorf("font sizes and margins must default to positive values: %+v", cfg)
	}
}

func TestParsePartial(t *testing.T) {
	if p := ParsePartial(nil); p != nil {
		t.Errorf("ParsePartial(nil) = %+v, want nil", p)
	}
	if p := ParsePartial([]byte(`{"style": "protoc`)); p != nil {
		t.Errorf("ParsePartial on malformed JSON = %+v, want nil", p)
	}
	p := ParsePartial([]byte(`{"style":"protocol","fontSizeBase":11}`))
	if p == nil || p.Style == nil || *p.Style != "protocol" {
		t.Fatalf("ParsePartial dropped the style override: %+v", p)
	}
	if p.FontSizeBase == nil || *p.FontSizeBase != 11 {
		t.Errorf("ParsePartial dropped the font override: %+v", p)
	}
	if got := Resolve(p); got.Style != StyleProtocol || got.FontSizeBase != 11 {
		t.Errorf("Resolve(ParsePartial(...)) = %+v, want protocol style at 11pt", got)
	}
}

func TestResolveJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "empty input falls back to defaults",
			raw:  "",
			want: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("got %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "empty object falls back to defaults",
			raw:  `{}`,
			want: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("got %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "malformed JSON falls back to defaults",
			raw:  `{"style": "protoc`,
			want: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("got %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "unknown fields are ignored",
			raw:  `{"style":"protocol","watermark":"draft","legacyColumns":9}`,
			want: func(t *testing.T, cfg Config) {
				if cfg.Style != StyleProtocol {
					t.Errorf("Style = %q, want protocol", cfg.Style)
				}
				if cfg.PhotoGrid != Default().PhotoGrid {
					t.Errorf("PhotoGrid changed by unknown fields: %+v", cfg.PhotoGrid)
				}
			},
		},
		{
			name: "partial overrides keep remaining defaults",
			raw:  `{"fontSizeBase":11,"photoGrid":{"columns":3},"coverPage":false}`,
			want: func(t *testing.T, cfg Config) {
				if cfg.FontSizeBase != 11 {
					t.Errorf("FontSizeBase = %v, want 11", cfg.FontSizeBase)
				}
				if cfg.PhotoGrid.Columns != 3 {
					t.Errorf("PhotoGrid.Columns = %d, want 3", cfg.PhotoGrid.Columns)
				}
				if cfg.PhotoGrid.CellWidth != Default().PhotoGrid.CellWidth {
					t.Errorf("CellWidth = %v, want default", cfg.PhotoGrid.CellWidth)
				}
				if cfg.CoverPage {
					t.Error("CoverPage = true, want false")
				}
				if !cfg.CertificateTable {
					t.Error("CertificateTable should keep its default")
				}
			},
		},
		{
			name: "explicit false toggles survive",
			raw:  `{"checklist":{"showAllItems":false,"highlightNonConforming":false},"certificateTable":false}`,
			want: func(t *testing.T, cfg Config) {
				if cfg.Checklist.ShowAllItems || cfg.Checklist.HighlightNonConforming || cfg.CertificateTable {
					t.Errorf("explicit false toggles ignored: %+v", cfg)
				}
			},
		},
		{
			name: "non-positive numbers are rejected in favor of defaults",
			raw:  `{"fontSizeBase":-4,"marginTop":0,"photoGrid":{"columns":0}}`,
			want: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("got %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "unrecognized style keeps default pipeline",
			raw:  `{"style":"fancy"}`,
			want: func(t *testing.T, cfg Config) {
				if cfg.Style != StyleDefault {
					t.Errorf("Style = %q, want default", cfg.Style)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, ResolveJSON([]byte(tt.raw)))
		})
	}
}
