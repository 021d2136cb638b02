// Package domain contains the per-tenant billing settings.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingSettings is the issuer configuration for one organization. Legacy
// installations stored these as a free-form JSON bag; the typed columns are
// authoritative and the bag is only consulted once, at load time, for fields
// the typed row has never been written with.
type BillingSettings struct {
	OrgID           snowflake.ID      `gorm:"primaryKey" json:"org_id"`
	CompanyName     string            `gorm:"type:text;not null;default:''" json:"company_name"`
	Street          string            `gorm:"type:text;not null;default:''" json:"street"`
	PostalCode      string            `gorm:"type:text;not null;default:''" json:"postal_code"`
	City            string            `gorm:"type:text;not null;default:''" json:"city"`
	Country         string            `gorm:"type:text;not null;default:'CH'" json:"country"`
	IBAN            string            `gorm:"column:iban;type:text;not null;default:''" json:"iban"`
	BIC             string            `gorm:"column:bic;type:text;not null;default:''" json:"bic"`
	DefaultCurrency string            `gorm:"type:text;not null;default:'CHF'" json:"default_currency"`
	DefaultTaxRate  float64           `gorm:"not null;default:8.1" json:"default_tax_rate"`
	InvoicePrefix   string            `gorm:"type:text;not null;default:'INV-'" json:"invoice_prefix"`
	Legacy          datatypes.JSONMap `gorm:"type:jsonb" json:"-"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillingSettings) TableName() string { return "billing_settings" }

// ApplyLegacy fills empty typed fields from the legacy JSON bag. Resolution
// happens exactly once per load so the renderer never touches the bag.
func (s *BillingSettings) ApplyLegacy() {
	if len(s.Legacy) == 0 {
		return
	}
	pick := func(dst *string, keys ...string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		for _, key := range keys {
			if value, ok := s.Legacy[key].(string); ok && strings.TrimSpace(value) != "" {
				*dst = strings.TrimSpace(value)
				return
			}
		}
	}
	pick(&s.CompanyName, "company_name", "companyName", "name")
	pick(&s.Street, "street", "address")
	pick(&s.PostalCode, "postal_code", "zip")
	pick(&s.City, "city")
	pick(&s.Country, "country")
	pick(&s.IBAN, "iban", "bank_account")
	pick(&s.BIC, "bic", "swift")
	pick(&s.InvoicePrefix, "invoice_prefix", "invoicePrefix")
	if strings.TrimSpace(s.DefaultCurrency) == "" {
		if value, ok := s.Legacy["default_currency"].(string); ok {
			s.DefaultCurrency = strings.ToUpper(strings.TrimSpace(value))
		}
	}
	if s.DefaultTaxRate == 0 {
		if value, ok := s.Legacy["default_tax_rate"].(float64); ok {
			s.DefaultTaxRate = value
		}
	}
}
