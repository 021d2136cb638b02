package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	ContactID   string          `json:"contact_id"`
	InvoiceType string          `json:"invoice_type"`
	Currency    string          `json:"currency"`
	DueAt       *time.Time      `json:"due_at"`
	Reference   string          `json:"reference"`
	PaymentLink string          `json:"payment_link"`
	Items       []LineItemInput `json:"items"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Status string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type RecordPaymentRequest struct {
	InvoiceID string     `json:"-"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	PaidAt    *time.Time `json:"paid_at"`
	Note      string     `json:"note"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	// Send finalizes a draft: assigns due date defaults, stamps issuance,
	// freezes line items, and publishes the sent event.
	Send(ctx context.Context, invoiceID string) (*Invoice, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Invoice, error)
	Cancel(ctx context.Context, invoiceID string, reason string) (*Invoice, error)
	// RenderPDF produces the invoice document as an in-memory byte buffer
	// plus the download filename derived from the invoice number.
	RenderPDF(ctx context.Context, invoiceID string) ([]byte, string, error)
	// SweepOverdue flips SENT invoices past their due date to OVERDUE and
	// returns how many were updated.
	SweepOverdue(ctx context.Context) (int, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_invoice_id")
	ErrInvalidContact      = errors.New("invalid_contact")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidType         = errors.New("invalid_invoice_type")
	ErrInvalidLineItem     = errors.New("invalid_line_item")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrNotFound            = errors.New("invoice_not_found")
	ErrNotDraft            = errors.New("invoice_not_draft")
	ErrNotPayable          = errors.New("invoice_not_payable")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrMissingIBAN         = errors.New("missing_creditor_iban")
	ErrCurrencyMismatch    = errors.New("currency_mismatch")
)
