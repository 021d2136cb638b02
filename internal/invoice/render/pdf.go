package render

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/smallbiznis/faktura/internal/invoice/qrbill"
)

// A4 geometry in millimeters. The payment slip occupies the bottom 105mm of
// the page per the Swiss payment slip layout.
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	marginLeft = 20.0
	marginTop  = 20.0

	slipHeight    = 105.0
	slipTop       = pageHeight - slipHeight
	receiptWidth  = 62.0
	qrSize        = 46.0
	qrX           = receiptWidth + 5
	qrY           = slipTop + 17
	qrPlaceholder = "[QR code unavailable]"
)

// PDFRenderer lays out a prepared invoice on a fixed-position A4 page.
type PDFRenderer struct{}

func NewRenderer() Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(input RenderInput) (RenderResult, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	// Sort catalog entries so output bytes do not depend on map iteration
	// order; required for byte-identical renders of the same input.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(input.GeneratedAt)
	pdf.SetModificationDate(input.GeneratedAt)
	pdf.SetTitle("Invoice "+input.Invoice.Number, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title and invoice number, top right.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(pageWidth-90-marginLeft+20, marginTop)
	pdf.CellFormat(90, 9, tr("Invoice"), "", 0, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(pageWidth-90-marginLeft+20, marginTop+10)
	pdf.CellFormat(90, 5, tr(input.Invoice.Number), "", 0, "R", false, 0, "")

	// Issuer block, top left.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(80, 5, tr(input.Issuer.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range addressLines(input.Issuer.Street, input.Issuer.PostalCode, input.Issuer.City, input.Issuer.Country) {
		pdf.CellFormat(80, 5, tr(line), "", 2, "L", false, 0, "")
	}

	// Billee block and dates, mid page.
	billeeTop := 60.0
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, billeeTop)
	pdf.CellFormat(80, 5, tr(input.Billee.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range addressLines(input.Billee.Street, input.Billee.PostalCode, input.Billee.City, input.Billee.Country) {
		pdf.CellFormat(80, 5, tr(line), "", 2, "L", false, 0, "")
	}

	pdf.SetXY(pageWidth-marginLeft-70, billeeTop)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(35, 5, tr("Invoice date"), "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 5, tr(input.Invoice.IssuedDate), "", 1, "R", false, 0, "")
	pdf.SetX(pageWidth - marginLeft - 70)
	pdf.CellFormat(35, 5, tr("Due date"), "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 5, tr(input.Invoice.DueDate), "", 1, "R", false, 0, "")

	// Line item table.
	tableTop := 95.0
	colDesc, colQty, colPrice, colAmount := 85.0, 25.0, 30.0, 30.0

	pdf.SetXY(marginLeft, tableTop)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetDrawColor(120, 120, 120)
	pdf.CellFormat(colDesc, 7, tr("Description"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 7, tr("Qty"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(colPrice, 7, tr("Unit price"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(colAmount, 7, tr("Amount"), "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range input.Items {
		pdf.SetX(marginLeft)
		pdf.CellFormat(colDesc, 6, tr(item.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, tr(item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, 6, tr(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 6, tr(item.Amount), "", 1, "R", false, 0, "")
	}

	// Totals summary, right aligned under the table.
	pdf.Ln(3)
	writeTotal := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(marginLeft + colDesc + colQty)
		pdf.CellFormat(colPrice, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 6, tr(value), "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", input.Invoice.Currency+" "+input.Totals.Subtotal, false)
	writeTotal("VAT", input.Invoice.Currency+" "+input.Totals.Tax, false)
	writeTotal("Total", input.Invoice.Currency+" "+input.Totals.Total, true)

	degraded := false
	if input.Slip != nil {
		degraded = r.drawSlip(pdf, tr, input)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return RenderResult{}, err
	}
	return RenderResult{Bytes: buf.Bytes(), QRDegraded: degraded}, nil
}

// drawSlip renders the payment slip region pinned to the bottom of the page:
// a dashed separator, the receipt column, and the payment part with the
// scannable code. A code generation failure degrades to a placeholder string
// instead of aborting the document.
func (r *PDFRenderer) drawSlip(pdf *gofpdf.Fpdf, tr func(string) string, input RenderInput) bool {
	slip := input.Slip

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.Line(0, slipTop, pageWidth, slipTop)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.Line(receiptWidth, slipTop, receiptWidth, pageHeight)

	// Receipt column.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(5, slipTop+5)
	pdf.CellFormat(receiptWidth-10, 6, tr("Receipt"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetXY(5, slipTop+13)
	pdf.CellFormat(receiptWidth-10, 3, tr("Account / Payable to"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(5)
	pdf.CellFormat(receiptWidth-10, 4, tr(slip.IBAN), "", 1, "L", false, 0, "")
	pdf.SetX(5)
	pdf.CellFormat(receiptWidth-10, 4, tr(slip.CreditorName), "", 1, "L", false, 0, "")
	pdf.SetX(5)
	pdf.CellFormat(receiptWidth-10, 4, tr(slip.CreditorLine), "", 1, "L", false, 0, "")

	if slip.DebtorName != "" {
		pdf.SetFont("Helvetica", "B", 6)
		pdf.SetXY(5, pdf.GetY()+2)
		pdf.CellFormat(receiptWidth-10, 3, tr("Payable by"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetX(5)
		pdf.CellFormat(receiptWidth-10, 4, tr(slip.DebtorName), "", 1, "L", false, 0, "")
		pdf.SetX(5)
		pdf.CellFormat(receiptWidth-10, 4, tr(slip.DebtorLine), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetXY(5, slipTop+68)
	pdf.CellFormat(20, 3, tr("Currency"), "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 3, tr("Amount"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(5)
	pdf.CellFormat(20, 4, tr(slip.Currency), "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 4, tr(slip.Amount), "", 1, "L", false, 0, "")

	// Payment part.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(qrX, slipTop+5)
	pdf.CellFormat(60, 6, tr("Payment part"), "", 1, "L", false, 0, "")

	degraded := false
	png, err := qrbill.EncodePNG(slip.Payload)
	if err != nil {
		degraded = true
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetXY(qrX, qrY+qrSize/2)
		pdf.CellFormat(qrSize, 5, tr(qrPlaceholder), "", 1, "C", false, 0, "")
	} else {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qrbill", opts, bytes.NewReader(png))
		pdf.ImageOptions("qrbill", qrX, qrY, qrSize, qrSize, false, opts, 0, "")
	}

	detailX := qrX + qrSize + 6
	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetXY(detailX, slipTop+15)
	pdf.CellFormat(70, 3, tr("Account / Payable to"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(detailX)
	pdf.CellFormat(70, 4, tr(slip.IBAN), "", 1, "L", false, 0, "")
	pdf.SetX(detailX)
	pdf.CellFormat(70, 4, tr(slip.CreditorName), "", 1, "L", false, 0, "")
	pdf.SetX(detailX)
	pdf.CellFormat(70, 4, tr(slip.CreditorLine), "", 1, "L", false, 0, "")

	if slip.Reference != "" {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetXY(detailX, pdf.GetY()+2)
		pdf.CellFormat(70, 3, tr("Reference"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(detailX)
		pdf.CellFormat(70, 4, tr(slip.Reference), "", 1, "L", false, 0, "")
	}

	if slip.DebtorName != "" {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetXY(detailX, pdf.GetY()+2)
		pdf.CellFormat(70, 3, tr("Payable by"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetX(detailX)
		pdf.CellFormat(70, 4, tr(slip.DebtorName), "", 1, "L", false, 0, "")
		pdf.SetX(detailX)
		pdf.CellFormat(70, 4, tr(slip.DebtorLine), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetXY(qrX, slipTop+73)
	pdf.CellFormat(20, 3, tr("Currency"), "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 3, tr("Amount"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(qrX)
	pdf.CellFormat(20, 4, tr(slip.Currency), "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 4, tr(slip.Amount), "", 1, "L", false, 0, "")

	return degraded
}

func addressLines(street, postalCode, city, country string) []string {
	lines := make([]string, 0, 3)
	if street != "" {
		lines = append(lines, street)
	}
	location := addressLine(postalCode, city)
	if location != "" {
		lines = append(lines, location)
	}
	if country != "" {
		lines = append(lines, country)
	}
	return lines
}
