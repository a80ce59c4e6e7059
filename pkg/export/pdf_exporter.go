package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Report is a multi-section document: a headline summary followed by
// any number of titled tables.
type Report struct {
	Title   string
	Summary []SummaryLine
	Tables  []ReportTable
}

// SummaryLine is one key-value line in the report header.
type SummaryLine struct {
	Label string
	Value string
}

// ReportTable is a titled Dataset inside a Report.
type ReportTable struct {
	Title string
	Data  Dataset
}

// PDFExporter renders reports and plain datasets into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderReport creates a PDF document from a report.
func (e *PDFExporter) RenderReport(report Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(report.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "", 10)
	for _, line := range report.Summary {
		pdf.CellFormat(50, 7, line.Label, "", 0, "", false, 0, "")
		pdf.CellFormat(0, 7, line.Value, "", 1, "", false, 0, "")
	}
	if len(report.Summary) > 0 {
		pdf.Ln(4)
	}

	for _, table := range report.Tables {
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, table.Title, "", 1, "", false, 0, "")
		}
		if err := renderTable(pdf, table.Data); err != nil {
			return nil, err
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	report := Report{Title: title, Tables: []ReportTable{{Data: data}}}
	return e.RenderReport(report)
}

func renderTable(pdf *gofpdf.Fpdf, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("pdf table requires at least one header")
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return nil
}
