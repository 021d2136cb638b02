package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/qrbill"
)

// Prepare resolves an invoice, its billing settings, and its contact into a
// RenderInput. This stage owns every lookup and formatting decision; the
// layout stage only draws. Missing optional issuer or billee fields resolve
// to empty strings and render blank.
//
// For QR-bill invoices the slip payload is built and validated here, so a
// missing or invalid creditor IBAN fails the render instead of producing an
// unscannable code.
func Prepare(
	inv invoicedomain.Invoice,
	settings settingsdomain.BillingSettings,
	contact contactdomain.Contact,
	now time.Time,
) (RenderInput, error) {
	input := RenderInput{
		Invoice: InvoiceView{
			Number:     inv.InvoiceNumber,
			Status:     string(inv.Status),
			Currency:   inv.Currency,
			IssuedDate: formatDate(inv.IssuedAt),
			DueDate:    formatDate(inv.DueAt),
		},
		Issuer: IssuerView{
			Name:       strings.TrimSpace(settings.CompanyName),
			Street:     strings.TrimSpace(settings.Street),
			PostalCode: strings.TrimSpace(settings.PostalCode),
			City:       strings.TrimSpace(settings.City),
			Country:    strings.ToUpper(strings.TrimSpace(settings.Country)),
		},
		Billee: BilleeView{
			Name:       contact.DisplayName(),
			Street:     strings.TrimSpace(contact.Street),
			PostalCode: strings.TrimSpace(contact.PostalCode),
			City:       strings.TrimSpace(contact.City),
			Country:    strings.ToUpper(strings.TrimSpace(contact.Country)),
		},
		GeneratedAt: now.UTC(),
	}

	for _, item := range inv.Items {
		input.Items = append(input.Items, LineItemView{
			Description: item.Description,
			Quantity:    formatQuantity(item.Quantity),
			UnitPrice:   formatAmount(item.UnitPrice),
			Amount:      formatAmount(lineAmount(item)),
		})
	}

	input.Totals = TotalsView{
		Subtotal: formatAmount(inv.SubtotalAmount),
		Tax:      formatAmount(inv.TaxAmount),
		Total:    formatAmount(inv.TotalAmount),
	}

	if inv.InvoiceType == invoicedomain.InvoiceTypeQRBill {
		slip, err := prepareSlip(inv, settings, contact)
		if err != nil {
			return RenderInput{}, err
		}
		input.Slip = slip
	}

	return input, nil
}

func prepareSlip(
	inv invoicedomain.Invoice,
	settings settingsdomain.BillingSettings,
	contact contactdomain.Contact,
) (*SlipView, error) {
	iban := qrbill.NormalizeIBAN(settings.IBAN)
	if iban == "" {
		return nil, invoicedomain.ErrMissingIBAN
	}

	creditor := qrbill.Party{
		Name:       settings.CompanyName,
		Street:     settings.Street,
		PostalCode: settings.PostalCode,
		City:       settings.City,
		Country:    settings.Country,
	}
	debtor := qrbill.Party{
		Name:       contact.DisplayName(),
		Street:     contact.Street,
		PostalCode: contact.PostalCode,
		City:       contact.City,
		Country:    contact.Country,
	}

	payload, err := qrbill.BuildPayload(qrbill.Payload{
		IBAN:        iban,
		Creditor:    creditor,
		Debtor:      debtor,
		AmountMinor: inv.TotalAmount,
		Currency:    inv.Currency,
		Reference:   inv.Reference,
		Message:     "Invoice " + inv.InvoiceNumber,
	})
	if err != nil {
		return nil, err
	}

	return &SlipView{
		Payload:      payload,
		IBAN:         formatIBAN(iban),
		CreditorName: creditor.Name,
		CreditorLine: addressLine(creditor.PostalCode, creditor.City),
		DebtorName:   debtor.Name,
		DebtorLine:   addressLine(debtor.PostalCode, debtor.City),
		Currency:     inv.Currency,
		Amount:       formatAmount(inv.TotalAmount),
		Reference:    inv.Reference,
	}, nil
}

// lineAmount is display-only: the published aggregates come from
// CalculateTotals and are stored on the invoice. It rounds the same way,
// half away from zero on exact decimals.
func lineAmount(item invoicedomain.LineItem) int64 {
	return decimal.NewFromFloat(item.Quantity).
		Mul(decimal.NewFromInt(item.UnitPrice)).
		Round(0).
		IntPart()
}

// formatAmount renders minor units in the Swiss style, with an apostrophe
// as the thousands separator.
func formatAmount(minor int64) string {
	negative := minor < 0
	if negative {
		minor = -minor
	}
	units := minor / 100
	cents := minor % 100

	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('\'')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("%s.%02d", b.String(), cents)
	if negative {
		return "-" + out
	}
	return out
}

func formatQuantity(value float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("02.01.2006")
}

// formatIBAN groups an IBAN into blocks of four for display.
func formatIBAN(iban string) string {
	var b strings.Builder
	for i, r := range iban {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func addressLine(postalCode, city string) string {
	return strings.TrimSpace(strings.TrimSpace(postalCode) + " " + strings.TrimSpace(city))
}
