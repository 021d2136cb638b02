// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// InvoiceType decides whether the document carries a Swiss payment slip.
type InvoiceType string

const (
	InvoiceTypeQRBill      InvoiceType = "QR_BILL"
	InvoiceTypeCrossBorder InvoiceType = "CROSS_BORDER"
)

// Invoice represents a billable document.
type Invoice struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID      `gorm:"not null;index" json:"org_id"`
	ContactID      snowflake.ID      `gorm:"not null;index" json:"contact_id"`
	InvoiceNumber  string            `gorm:"type:text;not null" json:"invoice_number"`
	InvoiceType    InvoiceType       `gorm:"type:text;not null;default:'QR_BILL'" json:"invoice_type"`
	Status         InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Currency       string            `gorm:"type:text;not null" json:"currency"`
	SubtotalAmount int64             `gorm:"not null;default:0" json:"subtotal_amount"`
	TaxAmount      int64             `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount    int64             `gorm:"not null;default:0" json:"total_amount"`
	Reference      string            `gorm:"type:text;not null;default:''" json:"reference,omitempty"`
	PaymentLink    string            `gorm:"type:text;not null;default:''" json:"payment_link,omitempty"`
	IssuedAt       *time.Time        `gorm:"" json:"issued_at"`
	DueAt          *time.Time        `gorm:"" json:"due_at"`
	PaidAt         *time.Time        `gorm:"" json:"paid_at"`
	CancelledAt    *time.Time        `gorm:"" json:"cancelled_at"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	Items          []LineItem        `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// CanTransition reports whether the lifecycle allows moving to the target
// status. Transitions are monotonic: DRAFT -> SENT -> PAID, with OVERDUE and
// CANCELLED as side exits. Nothing returns to DRAFT once sent.
func (i Invoice) CanTransition(target InvoiceStatus) bool {
	switch i.Status {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false
	default:
		return false
	}
}

// RecalculateState updates the invoice status from the total amount settled
// against it and the current time.
func (i *Invoice) RecalculateState(now time.Time, totalPaid int64) {
	if i.Status == InvoiceStatusCancelled || i.Status == InvoiceStatusDraft {
		return
	}

	if totalPaid >= i.TotalAmount {
		i.Status = InvoiceStatusPaid
		if i.PaidAt == nil {
			i.PaidAt = &now
		}
		return
	}

	if i.DueAt != nil && now.After(*i.DueAt) {
		i.Status = InvoiceStatusOverdue
		return
	}
	i.Status = InvoiceStatusSent
}

// IsMutable reports whether line items may still change.
func (i Invoice) IsMutable() bool { return i.Status == InvoiceStatusDraft }

// LineItem represents a line on an invoice. Lines are immutable once the
// invoice leaves DRAFT; the service layer enforces this.
type LineItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"-"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"-"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   int64        `gorm:"not null" json:"unit_price"`
	TaxRate     float64      `gorm:"not null;default:0" json:"tax_rate"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "invoice_items" }

// Payment is a settlement recorded against an invoice.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"-"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Currency  string       `gorm:"type:text;not null" json:"currency"`
	PaidAt    time.Time    `gorm:"not null" json:"paid_at"`
	Note      string       `gorm:"type:text;not null;default:''" json:"note,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
