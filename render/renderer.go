package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laudoflow/reportengine/imagesource"
	"github.com/laudoflow/reportengine/layout"
	"github.com/laudoflow/reportengine/report"
)

// Engine renders report snapshots into PDF documents. It is safe for
// concurrent use: every render owns an independent canvas and cursor, and
// the only blocking work is sequential image fetching through the loader.
type Engine struct {
	loader *imagesource.Loader
}

// New returns an engine whose images resolve through resolver and fetch
// through fetcher. Either may be nil when reports carry no remote images.
func New(resolver imagesource.Resolver, fetcher imagesource.Fetcher) *Engine {
	return &Engine{loader: &imagesource.Loader{Resolver: resolver, Fetcher: fetcher}}
}

// documentRenderer is the body-rendering capability behind the style
// switch. Exactly one implementation is selected per render.
type documentRenderer interface {
	renderBody(ctx context.Context, c *Canvas, in renderInput)
}

// RenderReportDocument produces a complete PDF for one report snapshot.
// The partial layout config is resolved against the defaults before any
// renderer runs, so a nil or sparse config never fails. Rendering is
// best-effort: a failing section is logged and left blank, a failing image
// is omitted, and only invalid top-level input yields an error.
func (e *Engine) RenderReportDocument(ctx context.Context, rep report.Snapshot, tenant report.TenantBranding, certificates []report.CertificateRecord, partial *layout.Partial) ([]byte, error) {
	cfg := layout.Resolve(partial)
	in := renderInput{Report: rep, Tenant: tenant, Certificates: certificates}

	colors := palette{
		Primary:   parseHexColor(tenant.PrimaryColor, defaultPalette.Primary),
		Secondary: parseHexColor(tenant.SecondaryColor, defaultPalette.Secondary),
		Accent:    parseHexColor(tenant.AccentColor, defaultPalette.Accent),
	}

	c := newCanvas(cfg, colors, e.loader, buildHeader(ctx, in), buildFooter(in))

	var body documentRenderer
	if cfg.Style == layout.StyleProtocol {
		body = protocolRenderer{}
	} else {
		body = componentRenderer{}
	}

	if cfg.CoverPage {
		renderSection("cover", func() {
			renderCover(ctx, c, in)
		})
	}
	c.AddPage()

	body.renderBody(ctx, c, in)

	if cfg.CertificateTable && len(certificates) > 0 {
		renderSection("certificates", func() {
			renderCertificateTable(c, certificates)
		})
	}
	if len(rep.Signatures) > 0 {
		renderSection("signatures", func() {
			renderSignatureGrid(ctx, c, rep.Signatures)
		})
	}

	out, err := c.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render report %q: %w", rep.Title, err)
	}
	slog.Info("Report document rendered.", "title", rep.Title, "pages", c.PageCount(), "bytes", len(out))
	return out, nil
}

// renderSection contains failures to the section that caused them: a panic
// inside one renderer is logged with the section name and the document
// continues with the next section, leaving the failed one blank.
func renderSection(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Section renderer failed, leaving section blank.", "section", name, "panic", r)
		}
	}()
	fn()
}
