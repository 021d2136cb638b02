package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupContactService(t *testing.T, name string) (contactdomain.Service, *gorm.DB, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&contactdomain.Contact{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS invoices (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			contact_id BIGINT NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create invoices: %v", err)
	}

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop(), GenID: node})
	ctx := orgcontext.WithOrgID(context.Background(), 7)
	return svc, db, ctx
}

func TestContactCreateAndGet(t *testing.T) {
	svc, _, ctx := setupContactService(t, "contact_create")

	created, err := svc.Create(ctx, contactdomain.CreateContactRequest{
		Kind:      "PERSON",
		FirstName: "Anna",
		LastName:  "Keller",
		Email:     "anna@example.ch",
		Country:   "ch",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.DisplayName() != "Anna Keller" {
		t.Fatalf("unexpected display name %q", created.DisplayName())
	}
	if created.Country != "CH" {
		t.Fatalf("country must be upper-cased, got %q", created.Country)
	}

	got, err := svc.GetByID(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "anna@example.ch" {
		t.Fatalf("unexpected email %q", got.Email)
	}
}

func TestContactCreateRequiresName(t *testing.T) {
	svc, _, ctx := setupContactService(t, "contact_noname")

	_, err := svc.Create(ctx, contactdomain.CreateContactRequest{Kind: "PERSON"})
	if !errors.Is(err, contactdomain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	_, err = svc.Create(ctx, contactdomain.CreateContactRequest{Kind: "ROBOT", FirstName: "X"})
	if !errors.Is(err, contactdomain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestContactDeleteBlockedByInvoices(t *testing.T) {
	svc, db, ctx := setupContactService(t, "contact_delete")

	contact, err := svc.Create(ctx, contactdomain.CreateContactRequest{
		Kind:        "ORGANIZATION",
		CompanyName: "Beispiel GmbH",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Exec(
		`INSERT INTO invoices (id, org_id, contact_id) VALUES (1, 7, ?)`, contact.ID,
	).Error; err != nil {
		t.Fatalf("insert invoice: %v", err)
	}

	if err := svc.Delete(ctx, contact.ID.String()); !errors.Is(err, contactdomain.ErrHasInvoices) {
		t.Fatalf("expected ErrHasInvoices, got %v", err)
	}

	if err := db.Exec(`DELETE FROM invoices`).Error; err != nil {
		t.Fatalf("clear invoices: %v", err)
	}
	if err := svc.Delete(ctx, contact.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, contact.ID.String()); !errors.Is(err, contactdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestContactOrgScoping(t *testing.T) {
	svc, _, ctx := setupContactService(t, "contact_scope")

	contact, err := svc.Create(ctx, contactdomain.CreateContactRequest{
		Kind:        "ORGANIZATION",
		CompanyName: "Beispiel GmbH",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherOrg := orgcontext.WithOrgID(context.Background(), 8)
	if _, err := svc.GetByID(otherOrg, contact.ID.String()); !errors.Is(err, contactdomain.ErrNotFound) {
		t.Fatalf("expected cross-org lookup to miss, got %v", err)
	}
}
