package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape table, one header row per page.
type PDFExporter struct {
	fontSize float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{fontSize: 8}
}

// ContentType of the rendered document.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)

	colWidth := 277.0 / float64(len(data.Headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", e.fontSize+1)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", e.fontSize)
	}
	pdf.SetHeaderFunc(func() {
		if title != "" && pdf.PageNo() == 1 {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		writeHeader()
	})
	pdf.AddPage()

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 6, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
