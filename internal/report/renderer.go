// Package report renders the complaint PDF artifact.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-pdf/fpdf"

	"complaint-pipeline/internal/common/logger"
	"complaint-pipeline/internal/event"
	"complaint-pipeline/internal/normalize"
)

type Renderer struct {
	outputDir string
	logger    logger.Logger
}

func NewRenderer(outputDir string, log logger.Logger) *Renderer {
	return &Renderer{outputDir: outputDir, logger: log}
}

// Render produces the complaint report PDF. Structured submissions get
// their sections laid out in document order; flat submissions fall back
// to a sorted field listing.
func (r *Renderer) Render(sub *event.Submission, complaintID string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252; submissions arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := fmt.Sprintf("%s – Complaint Report", sub.FormTitle)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(title), "", "C", false)
	pdf.Ln(4)

	r.renderMeta(pdf, tr, "Complaint ID", complaintID)
	r.renderMeta(pdf, tr, "Submitted", sub.Timestamp)
	if sub.Status != "" {
		r.renderMeta(pdf, tr, "Status", sub.Status)
	}
	pdf.Ln(4)

	if len(sub.Sections) > 0 {
		r.renderSections(pdf, tr, sub.Sections)
	} else {
		r.renderFields(pdf, tr, sub.Fields)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderMeta(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
}

func (r *Renderer) renderSections(pdf *fpdf.Fpdf, tr func(string) string, sections []event.Section) {
	for _, sec := range sections {
		if sec.Title != "" {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetFillColor(235, 235, 235)
			pdf.CellFormat(0, 8, tr(sec.Title), "", 1, "L", true, 0, "")
			pdf.Ln(1)
		}
		for _, row := range sec.Rows {
			r.renderMeta(pdf, tr, row.Label, normalize.Stringify(row.Value))
		}
		pdf.Ln(3)
	}
}

func (r *Renderer) renderFields(pdf *fpdf.Fpdf, tr func(string) string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		r.renderMeta(pdf, tr, k, normalize.Stringify(fields[k]))
	}
}

// WriteArtifact keeps a local copy of the rendered PDF for workflow
// artifacts and debugging. Failure is non-fatal to the pipeline.
func (r *Renderer) WriteArtifact(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
