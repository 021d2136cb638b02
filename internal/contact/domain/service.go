package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type CreateContactRequest struct {
	Kind        string `json:"kind"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type UpdateContactRequest struct {
	ID          string  `json:"id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email"`
	Street      *string `json:"street"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

type ListContactRequest struct {
	Name  string
	Email string
}

type Service interface {
	Create(ctx context.Context, req CreateContactRequest) (*Contact, error)
	Update(ctx context.Context, req UpdateContactRequest) (*Contact, error)
	List(ctx context.Context, req ListContactRequest) ([]Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	Delete(ctx context.Context, id string) error
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidName         = errors.New("invalid_name")
	ErrNotFound            = errors.New("not_found")
	ErrHasInvoices         = errors.New("contact_has_invoices")
)
