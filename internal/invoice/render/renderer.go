package render

import "time"

// RenderInput is the deterministic, fully resolved input used for invoice
// rendering. Every field is a final string or number; the layout stage does
// no lookups and no arithmetic.
type RenderInput struct {
	Invoice     InvoiceView
	Issuer      IssuerView
	Billee      BilleeView
	Items       []LineItemView
	Totals      TotalsView
	Slip        *SlipView
	GeneratedAt time.Time
}

type InvoiceView struct {
	Number     string
	Status     string
	Currency   string
	IssuedDate string
	DueDate    string
}

type IssuerView struct {
	Name       string
	Street     string
	PostalCode string
	City       string
	Country    string
}

type BilleeView struct {
	Name       string
	Street     string
	PostalCode string
	City       string
	Country    string
}

type LineItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type TotalsView struct {
	Subtotal string
	Tax      string
	Total    string
}

// SlipView is the payment-slip region, present only for domestic QR-bill
// invoices.
type SlipView struct {
	Payload      string
	IBAN         string
	CreditorName string
	CreditorLine string
	DebtorName   string
	DebtorLine   string
	Currency     string
	Amount       string
	Reference    string
}

// RenderResult is the generated document plus degradation flags.
type RenderResult struct {
	Bytes []byte
	// QRDegraded is set when code generation failed and the slip carries a
	// visible placeholder instead of the scannable image.
	QRDegraded bool
}

type Renderer interface {
	Render(input RenderInput) (RenderResult, error)
}
