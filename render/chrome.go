package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/laudoflow/reportengine/report"
)

// Page chrome: the header and footer drawn on every content page (never on
// the cover). Both are built as closures over the render input and injected
// into the canvas at construction; the canvas invokes them itself on page
// creation and completion.

const (
	headerLogoH = 12.0
	footerH     = 12.0
)

func buildHeader(ctx context.Context, in renderInput) ChromeFunc {
	return func(c *Canvas) {
		pageW, _ := c.PageSize()
		top := c.cfg.MarginTop

		if in.Tenant.LogoSource != "" {
			c.PlaceImage(ctx, in.Tenant.LogoSource, c.MarginLeft(), top, 30, headerLogoH)
		}
		if in.Tenant.SecondaryLogoSource != "" {
			c.PlaceImage(ctx, in.Tenant.SecondaryLogoSource, pageW-c.MarginLeft()-30, top, 30, headerLogoH)
		}

		c.SetXY(c.MarginLeft()+32, top+1)
		c.PlaceCell(c.ContentWidth()-64, 6, orPlaceholder(in.Report.Title), CellStyle{
			Bold:    true,
			Size:    c.cfg.FontSizeHeader,
			Align:   "C",
			TextRGB: c.colors.Primary,
		})
		c.SetXY(c.MarginLeft()+32, top+7)
		c.PlaceCell(c.ContentWidth()-64, 4, templateLine(in.Report.Template), CellStyle{
			Size:    7.5,
			Align:   "C",
			TextRGB: c.colors.Secondary,
		})

		lineY := top + headerLogoH + 2
		c.DrawLine(c.MarginLeft(), lineY, pageW-c.MarginLeft(), lineY, c.colors.Accent)
		c.SetY(lineY + 3)
	}
}

func buildFooter(in renderInput) ChromeFunc {
	return func(c *Canvas) {
		pageW, pageH := c.PageSize()
		y := pageH - c.cfg.MarginBottom + 2

		c.DrawLine(c.MarginLeft(), y, pageW-c.MarginLeft(), y, c.colors.Secondary)
		c.SetXY(c.MarginLeft(), y+1.5)
		c.PlaceCell(c.ContentWidth()*0.8, 4, contactLine(in.Tenant), CellStyle{
			Size:     7,
			TextRGB:  c.colors.Secondary,
			NoMargin: true,
		})
		// {nb} is the total-page-count alias substituted at output time.
		c.PlaceCell(c.ContentWidth()*0.2, 4, fmt.Sprintf("Página %d de {nb}", c.pdf.PageNo()), CellStyle{
			Size:     7,
			Align:    "R",
			TextRGB:  c.colors.Secondary,
			NoMargin: true,
		})
	}
}

func templateLine(t report.TemplateSnapshot) string {
	parts := make([]string, 0, 3)
	if t.Name != "" {
		parts = append(parts, t.Name)
	}
	if t.Code != "" {
		parts = append(parts, t.Code)
	}
	if t.Version > 0 {
		parts = append(parts, fmt.Sprintf("v%d", t.Version))
	}
	return strings.Join(parts, " · ")
}

func contactLine(t report.TenantBranding) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{t.Address, t.Phone, t.Email, t.Website} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

// renderCover draws the optional full first page: centered logo, tenant
// name, report title, dotted info-field placeholders, and up to three
// signature placeholders. Skipped entirely when the cover toggle is off.
func renderCover(ctx context.Context, c *Canvas, in renderInput) {
	c.AddCoverPage()

	pageW, pageH := c.PageSize()
	centerX := pageW / 2

	y := pageH * 0.12
	if in.Tenant.LogoSource != "" {
		const logoW = 55.0
		if c.PlaceImage(ctx, in.Tenant.LogoSource, centerX-logoW/2, y, logoW, 28) {
			y += 32
		}
	}

	c.SetXY(c.MarginLeft(), y)
	c.PlaceCell(c.ContentWidth(), 8, in.Tenant.Name, CellStyle{
		Bold:    true,
		Size:    c.cfg.FontSizeHeader + 2,
		Align:   "C",
		TextRGB: c.colors.Primary,
	})
	y += 14

	c.SetXY(c.MarginLeft(), y)
	c.PlaceCell(c.ContentWidth(), 8, orPlaceholder(in.Report.Title), CellStyle{
		Bold:  true,
		Size:  c.cfg.FontSizeHeader,
		Align: "C",
	})
	y += 9
	c.SetXY(c.MarginLeft(), y)
	c.PlaceCell(c.ContentWidth(), 5, templateLine(in.Report.Template), CellStyle{
		Size:    c.cfg.FontSizeBase,
		Align:   "C",
		TextRGB: c.colors.Secondary,
	})
	y += 16

	// Dotted fill-in lines for the info fields, cover-sheet style.
	values := make(map[string]string, len(in.Report.InfoValues))
	for _, v := range in.Report.InfoValues {
		values[v.Label] = v.Value
	}
	lineW := c.ContentWidth() * 0.7
	x := centerX - lineW/2
	for _, f := range sortedInfoFields(in.Report.Template) {
		c.SetXY(x, y)
		c.PlaceCell(lineW*0.35, 6, f.Label+":", CellStyle{Bold: true})
		if v := cleanValue(values[f.Label]); v != "" {
			c.PlaceCell(lineW*0.65, 6, v, CellStyle{})
		} else {
			c.DrawDottedLine(x+lineW*0.35, y+5, x+lineW, y+5, c.colors.Secondary)
		}
		y += 9
		if y > pageH*0.62 {
			break
		}
	}

	// Up to three signature placeholders along the bottom.
	roles := in.Report.Template.SignatureRoles
	if len(roles) > 3 {
		roles = roles[:3]
	}
	if len(roles) > 0 {
		sigY := pageH * 0.78
		sigW := (c.ContentWidth() - float64(len(roles)-1)*10) / float64(len(roles))
		for i, role := range roles {
			sx := c.MarginLeft() + float64(i)*(sigW+10)
			c.DrawDottedLine(sx, sigY, sx+sigW, sigY, c.colors.Secondary)
			c.SetXY(sx, sigY+1.5)
			c.PlaceCell(sigW, 4, role.Role, CellStyle{Size: 8, Align: "C", TextRGB: c.colors.Secondary, NoMargin: true})
		}
	}
}
