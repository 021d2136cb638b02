package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

func fixtureSettings() settingsdomain.BillingSettings {
	return settingsdomain.BillingSettings{
		CompanyName:     "Muster Treuhand AG",
		Street:          "Bahnhofstrasse 1",
		PostalCode:      "8001",
		City:            "Zürich",
		Country:         "CH",
		IBAN:            "CH93 0076 2011 6238 5295 7",
		DefaultCurrency: "CHF",
	}
}

func fixtureContact() contactdomain.Contact {
	return contactdomain.Contact{
		Kind:        contactdomain.ContactKindOrganization,
		CompanyName: "Beispiel GmbH",
		Street:      "Musterweg 5",
		PostalCode:  "3000",
		City:        "Bern",
		Country:     "CH",
	}
}

func fixtureInvoice() invoicedomain.Invoice {
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	return invoicedomain.Invoice{
		InvoiceNumber:  "INV-0042",
		InvoiceType:    invoicedomain.InvoiceTypeQRBill,
		Status:         invoicedomain.InvoiceStatusSent,
		Currency:       "CHF",
		SubtotalAmount: 150000,
		TaxAmount:      12150,
		TotalAmount:    162150,
		IssuedAt:       &issued,
		DueAt:          &due,
		Items: []invoicedomain.LineItem{
			{Description: "Consulting", Quantity: 10, UnitPrice: 15000, TaxRate: 8.1},
		},
	}
}

func TestPrepareQRBill(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	input, err := Prepare(fixtureInvoice(), fixtureSettings(), fixtureContact(), now)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}

	if input.Invoice.Number != "INV-0042" {
		t.Fatalf("unexpected number %q", input.Invoice.Number)
	}
	if input.Invoice.IssuedDate != "01.03.2025" {
		t.Fatalf("unexpected issued date %q", input.Invoice.IssuedDate)
	}
	if input.Invoice.DueDate != "31.03.2025" {
		t.Fatalf("unexpected due date %q", input.Invoice.DueDate)
	}
	if input.Billee.Name != "Beispiel GmbH" {
		t.Fatalf("unexpected billee name %q", input.Billee.Name)
	}
	if got := input.Totals.Total; got != "1'621.50" {
		t.Fatalf("unexpected total %q", got)
	}
	if len(input.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(input.Items))
	}
	if input.Items[0].Quantity != "10" {
		t.Fatalf("unexpected quantity %q", input.Items[0].Quantity)
	}
	if input.Items[0].UnitPrice != "150.00" {
		t.Fatalf("unexpected unit price %q", input.Items[0].UnitPrice)
	}

	if input.Slip == nil {
		t.Fatal("expected payment slip for QR-bill invoice")
	}
	if !strings.HasPrefix(input.Slip.Payload, "SPC\n0200\n1\nCH9300762011623852957\n") {
		t.Fatalf("unexpected payload head: %q", input.Slip.Payload[:40])
	}
	if !strings.HasSuffix(input.Slip.Payload, "\nEPD") {
		t.Fatal("payload missing EPD trailer")
	}
	if input.Slip.IBAN != "CH93 0076 2011 6238 5295 7" {
		t.Fatalf("unexpected formatted IBAN %q", input.Slip.IBAN)
	}
	if input.Slip.Amount != "1'621.50" {
		t.Fatalf("unexpected slip amount %q", input.Slip.Amount)
	}
	if input.Slip.DebtorLine != "3000 Bern" {
		t.Fatalf("unexpected debtor line %q", input.Slip.DebtorLine)
	}
}

func TestPrepareCrossBorderHasNoSlip(t *testing.T) {
	inv := fixtureInvoice()
	inv.InvoiceType = invoicedomain.InvoiceTypeCrossBorder
	inv.Currency = "USD"

	input, err := Prepare(inv, fixtureSettings(), fixtureContact(), time.Now())
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if input.Slip != nil {
		t.Fatal("cross-border invoice must not carry a payment slip")
	}
}

func TestPrepareMissingIBAN(t *testing.T) {
	settings := fixtureSettings()
	settings.IBAN = ""

	_, err := Prepare(fixtureInvoice(), settings, fixtureContact(), time.Now())
	if !errors.Is(err, invoicedomain.ErrMissingIBAN) {
		t.Fatalf("expected ErrMissingIBAN, got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{162150, "1'621.50"},
		{123456789, "1'234'567.89"},
		{-9900, "-99.00"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.minor); got != tc.want {
			t.Fatalf("formatAmount(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}

func TestLineAmount(t *testing.T) {
	cases := []struct {
		quantity  float64
		unitPrice int64
		want      int64
	}{
		{10, 15000, 150000},
		{2.5, 333, 833},   // 832.5 rounds half away from zero
		{0.1, 5, 1},       // 0.5 rounds up, immune to binary float drift
		{1.15, 1000, 1150},
	}
	for _, tc := range cases {
		item := invoicedomain.LineItem{Quantity: tc.quantity, UnitPrice: tc.unitPrice}
		if got := lineAmount(item); got != tc.want {
			t.Fatalf("lineAmount(%v x %d) = %d, want %d", tc.quantity, tc.unitPrice, got, tc.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := formatQuantity(2.5); got != "2.5" {
		t.Fatalf("formatQuantity(2.5) = %q", got)
	}
	if got := formatQuantity(3); got != "3" {
		t.Fatalf("formatQuantity(3) = %q", got)
	}
}
