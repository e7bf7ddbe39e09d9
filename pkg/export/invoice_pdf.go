package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceLine is one priced row on an invoice document.
type InvoiceLine struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// InvoiceDocument carries the printable fields of an invoice.
type InvoiceDocument struct {
	Issuer      string
	Number      string
	StudentID   string
	StudentName string
	Type        string
	Status      string
	IssueDate   string
	DueDate     string
	Lines       []InvoiceLine
	Total       float64
}

// InvoicePDF renders single invoice documents.
type InvoicePDF struct{}

// NewInvoicePDF constructs the invoice renderer.
func NewInvoicePDF() *InvoicePDF {
	return &InvoicePDF{}
}

// Render lays out the header block, the item table and the grand total.
func (r *InvoicePDF) Render(doc InvoiceDocument) ([]byte, error) {
	if doc.Number == "" {
		return nil, fmt.Errorf("invoice number required")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, doc.Issuer, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Invoice %s", doc.Number), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	meta := [][2]string{
		{"Student", fmt.Sprintf("%s (%s)", doc.StudentName, doc.StudentID)},
		{"Type", doc.Type},
		{"Status", doc.Status},
		{"Issue date", doc.IssueDate},
		{"Due date", doc.DueDate},
	}
	for _, kv := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{95, 20, 32, 33}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range []string{"Description", "Qty", "Unit price", "Total"} {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(widths[0], 7, truncate(line.Description, 55), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, formatQuantity(line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, formatMoney(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, formatMoney(line.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, formatMoney(doc.Total), "1", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatQuantity(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
