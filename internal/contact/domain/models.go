// Package domain contains persistence models for contacts.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ContactKind distinguishes people from organizations.
type ContactKind string

const (
	ContactKindPerson       ContactKind = "PERSON"
	ContactKindOrganization ContactKind = "ORGANIZATION"
)

// Contact is a billable party.
type Contact struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	Kind        ContactKind  `gorm:"type:text;not null;default:'PERSON'" json:"kind"`
	FirstName   string       `gorm:"type:text;not null;default:''" json:"first_name"`
	LastName    string       `gorm:"type:text;not null;default:''" json:"last_name"`
	CompanyName string       `gorm:"type:text;not null;default:''" json:"company_name"`
	Email       string       `gorm:"type:text;not null;default:''" json:"email"`
	Street      string       `gorm:"type:text;not null;default:''" json:"street"`
	PostalCode  string       `gorm:"type:text;not null;default:''" json:"postal_code"`
	City        string       `gorm:"type:text;not null;default:''" json:"city"`
	Country     string       `gorm:"type:text;not null;default:''" json:"country"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Contact) TableName() string { return "contacts" }

// DisplayName returns the billee name for documents: the company name for
// organizations, otherwise the person's full name.
func (c Contact) DisplayName() string {
	if c.Kind == ContactKindOrganization && strings.TrimSpace(c.CompanyName) != "" {
		return strings.TrimSpace(c.CompanyName)
	}
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
