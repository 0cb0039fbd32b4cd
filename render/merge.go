package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MergeWithCertificateAttachments concatenates the rendered report with the
// given certificate PDFs, primary pages first, attachments in input order.
// An empty attachment list returns the primary bytes unchanged. Attachments
// that fail to parse are skipped; if none survive, the primary is likewise
// returned unchanged.
func MergeWithCertificateAttachments(primary []byte, attachments [][]byte) ([]byte, error) {
	if len(primary) == 0 {
		return nil, fmt.Errorf("empty primary document")
	}
	if len(attachments) == 0 {
		return primary, nil
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	valid := make([][]byte, 0, len(attachments))
	for i, att := range attachments {
		if err := api.Validate(bytes.NewReader(att), conf); err != nil {
			slog.Warn("Skipping unparseable certificate attachment.", "index", i, "error", err)
			continue
		}
		valid = append(valid, att)
	}
	if len(valid) == 0 {
		return primary, nil
	}

	readers := make([]io.ReadSeeker, 0, len(valid)+1)
	readers = append(readers, bytes.NewReader(primary))
	for _, att := range valid {
		readers = append(readers, bytes.NewReader(att))
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, fmt.Errorf("failed to merge certificate attachments: %w", err)
	}
	return buf.Bytes(), nil
}

// PageCount reports the page count of a rendered document. Used by the
// service layer for job bookkeeping.
func PageCount(doc []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(doc), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}
