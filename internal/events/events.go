package events

// Invoice lifecycle event types published through the outbox.
const (
	EventInvoiceSent      = "invoice.sent"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceOverdue   = "invoice.overdue"
	EventInvoiceCancelled = "invoice.cancelled"
	EventPaymentRecorded  = "payment.recorded"
)

// InvoicePayload captures the minimal data downstream consumers need to
// react to an invoice transition.
type InvoicePayload struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	ContactID     string `json:"contact_id,omitempty"`
	Currency      string `json:"currency,omitempty"`
	TotalAmount   int64  `json:"total_amount,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id":     p.InvoiceID,
		"invoice_number": p.InvoiceNumber,
	}
	if p.ContactID != "" {
		payload["contact_id"] = p.ContactID
	}
	if p.Currency != "" {
		payload["currency"] = p.Currency
	}
	if p.TotalAmount != 0 {
		payload["total_amount"] = p.TotalAmount
	}
	return payload
}

// PaymentPayload describes a recorded payment against an invoice.
type PaymentPayload struct {
	PaymentID string `json:"payment_id"`
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	return map[string]any{
		"payment_id": p.PaymentID,
		"invoice_id": p.InvoiceID,
		"amount":     p.Amount,
		"currency":   p.Currency,
	}
}
