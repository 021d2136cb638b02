package domain

import (
	"context"
	"errors"
)

type UpdateRequest struct {
	CompanyName     *string  `json:"company_name"`
	Street          *string  `json:"street"`
	PostalCode      *string  `json:"postal_code"`
	City            *string  `json:"city"`
	Country         *string  `json:"country"`
	IBAN            *string  `json:"iban"`
	BIC             *string  `json:"bic"`
	DefaultCurrency *string  `json:"default_currency"`
	DefaultTaxRate  *float64 `json:"default_tax_rate"`
	InvoicePrefix   *string  `json:"invoice_prefix"`
}

type Service interface {
	// Get returns the organization's settings with legacy fields resolved,
	// creating a default row on first access.
	Get(ctx context.Context) (*BillingSettings, error)
	Update(ctx context.Context, req UpdateRequest) (*BillingSettings, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidTaxRate      = errors.New("invalid_tax_rate")
	ErrInvalidIBAN         = errors.New("invalid_iban")
)
