package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/laudoflow/reportengine/imagesource"
	"github.com/laudoflow/reportengine/layout"
	"github.com/laudoflow/reportengine/report"
)

func testEngine() *Engine {
	return New(imagesource.PassthroughResolver{}, nil)
}

func sampleSnapshot() report.Snapshot {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return report.Snapshot{
		Title:     "Laudo de Inspeção Elétrica",
		Status:    "completed",
		CreatedAt: created,
		Location:  "São Paulo, SP",
		Template: report.TemplateSnapshot{
			Name:    "Inspeção NR-10",
			Code:    "NR10-01",
			Version: 3,
			InfoFields: []report.InfoFieldDef{
				{Label: "Cliente", Type: "text", Order: 1},
			},
			Sections: []report.SectionDef{
				{
					Name:  "Quadro Geral",
					Order: 1,
					Fields: []report.FieldDef{
						{Label: "Disjuntores identificados", Type: "yesno", Order: 1},
						{Label: "Aterramento conforme", Type: "yesno", Order: 2},
					},
				},
			},
		},
		InfoValues: []report.InfoValue{
			{Label: "Cliente", Type: "text", Value: "Indústria Exemplo Ltda"},
		},
		Responses: []report.ChecklistResponse{
			{
				SectionName: "Quadro Geral",
				FieldLabel:  "Disjuntores identificados",
				FieldType:   "yesno",
				Value:       "Sim",
				Comment:     "Etiquetas novas instaladas.",
			},
		},
	}
}

func sampleTenant() report.TenantBranding {
	return report.TenantBranding{
		Name:         "Exemplo Engenharia",
		PrimaryColor: "#1F4E79",
		Email:        "contato@exemplo.com.br",
		Phone:        "+55 11 4000-0000",
	}
}

func TestRenderReportDocumentEndToEnd(t *testing.T) {
	out, err := testEngine().RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with the PDF magic header: %q", out[:8])
	}

	baseline := minimalPDF(t, 1)
	if len(out) <= len(baseline) {
		t.Errorf("document size %d should exceed the minimal-document baseline %d", len(out), len(baseline))
	}

	pages, err := PageCount(out)
	if err != nil {
		t.Fatalf("page count failed: %v", err)
	}
	if pages < 2 {
		t.Errorf("pages = %d, want at least 2 (cover + content)", pages)
	}
}

func TestRenderIsStructurallyDeterministic(t *testing.T) {
	eng := testEngine()
	first, err := eng.RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := eng.RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	p1, err := PageCount(first)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := PageCount(second)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Errorf("page counts differ across identical renders: %d vs %d", p1, p2)
	}
}

func TestRenderOmitsUnmatchedResponses(t *testing.T) {
	eng := testEngine()
	base := sampleSnapshot()

	withGhost := sampleSnapshot()
	withGhost.Responses = append(withGhost.Responses, report.ChecklistResponse{
		SectionName: "Seção Fantasma",
		FieldLabel:  "Campo removido do template",
		Value:       "Sim",
	})

	baseDoc, err := eng.RenderReportDocument(context.Background(), base, sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("base render failed: %v", err)
	}
	ghostDoc, err := eng.RenderReportDocument(context.Background(), withGhost, sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("render with unmatched response failed: %v", err)
	}

	p1, err := PageCount(baseDoc)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := PageCount(ghostDoc)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Errorf("unmatched response changed the document structure: %d vs %d pages", p1, p2)
	}
}

func TestRenderWithoutCoverHasFewerPages(t *testing.T) {
	eng := testEngine()
	coverOff := false

	withCover, err := eng.RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	withoutCover, err := eng.RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), nil, &layout.Partial{CoverPage: &coverOff})
	if err != nil {
		t.Fatal(err)
	}

	p1, err := PageCount(withCover)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := PageCount(withoutCover)
	if err != nil {
		t.Fatal(err)
	}
	if p2 != p1-1 {
		t.Errorf("pages without cover = %d, want %d", p2, p1-1)
	}
}

func TestRenderProtocolStyle(t *testing.T) {
	snap := sampleSnapshot()
	snap.Template.Sections = append(snap.Template.Sections, report.SectionDef{
		Name:  "Medições",
		Order: 2,
		Fields: []report.FieldDef{
			{Label: "Fase A - Tensão", Order: 1},
			{Label: "Fase A - Corrente", Order: 2},
			{Label: "Fase B - Tensão", Order: 3},
		},
	})
	snap.Responses = append(snap.Responses,
		report.ChecklistResponse{SectionName: "Medições", FieldLabel: "Fase A - Tensão", Value: `["220"]`},
		report.ChecklistResponse{SectionName: "Medições", FieldLabel: "Fase A - Corrente", Value: "10"},
		report.ChecklistResponse{SectionName: "Medições", FieldLabel: "Fase B - Tensão", Value: "219"},
	)

	style := "protocol"
	out, err := testEngine().RenderReportDocument(context.Background(), snap, sampleTenant(), nil, &layout.Partial{Style: &style})
	if err != nil {
		t.Fatalf("protocol render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("protocol output is not a PDF")
	}
}

func TestRenderSectionContainsPanics(t *testing.T) {
	reached := false
	renderSection("broken", func() { panic("boom") })
	renderSection("next", func() { reached = true })
	if !reached {
		t.Error("a panic in one section must not stop the following sections")
	}
}

func TestRenderWithCertificates(t *testing.T) {
	calibrated := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	expires := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	certs := []report.CertificateRecord{
		{Equipment: "Multímetro Fluke 87V", Number: "CAL-2024-118", Laboratory: "LabCal Metrologia", CalibratedAt: &calibrated, ExpiresAt: &expires, Status: report.CertificateValid},
		{Equipment: "Terrômetro", Number: "CAL-2023-550", Laboratory: "LabCal Metrologia", Status: report.CertificateExpired},
	}

	out, err := testEngine().RenderReportDocument(context.Background(), sampleSnapshot(), sampleTenant(), certs, nil)
	if err != nil {
		t.Fatalf("render with certificates failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderMissingImagesAreNotFatal(t *testing.T) {
	snap := sampleSnapshot()
	snap.Responses[0].Photos = []report.PhotoReference{
		{Source: "/nonexistent/path/photo.jpg", FieldLabel: "Disjuntores identificados"},
	}
	snap.Signatures = []report.SignatureRecord{
		{RoleName: "Engenheiro Responsável", SignerName: "A. Silva", ImageSource: "/nonexistent/sig.png"},
	}

	out, err := testEngine().RenderReportDocument(context.Background(), snap, sampleTenant(), nil, nil)
	if err != nil {
		t.Fatalf("render with unreachable images failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
