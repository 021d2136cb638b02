// Package qrbill assembles Swiss QR-bill payment slip payloads.
//
// The payload follows the Swiss Payment Standards implementation guidelines
// for the QR-bill (version 2.x): a fixed-order, newline-separated Swiss
// Payment Code beginning with SPC/0200/1 and terminated by EPD. Addresses
// use the combined ("K") element set.
package qrbill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	qrType      = "SPC"
	version     = "0200"
	codingLatin = "1"
	trailer     = "EPD"

	maxAmount = 999_999_999.99
)

var (
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrMissingCreditor = errors.New("missing_creditor")
	ErrReferenceIBAN   = errors.New("reference_iban_mismatch")
)

// Party is a creditor or debtor address block in combined form.
type Party struct {
	Name       string
	Street     string
	PostalCode string
	City       string
	Country    string
}

func (p Party) empty() bool { return strings.TrimSpace(p.Name) == "" }

// Payload carries every field of a payment slip. Built fresh per render,
// never persisted.
type Payload struct {
	IBAN          string
	Creditor      Party
	Debtor        Party
	AmountMinor   int64
	Currency      string
	ReferenceType ReferenceType
	Reference     string
	Message       string
}

// BuildPayload validates the inputs and assembles the complete Swiss Payment
// Code string. Unlike the legacy behavior of encoding just the account
// number, every mandatory element is present and checksummed, so the code is
// machine-readable by banks.
func BuildPayload(p Payload) (string, error) {
	iban := NormalizeIBAN(p.IBAN)
	if iban == "" {
		return "", ErrInvalidIBAN
	}
	if err := ValidateIBAN(iban); err != nil {
		return "", err
	}
	if !strings.HasPrefix(iban, "CH") && !strings.HasPrefix(iban, "LI") {
		return "", ErrUnsupportedIBAN
	}

	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency != "CHF" && currency != "EUR" {
		return "", ErrInvalidCurrency
	}

	if p.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	amount := decimal.New(p.AmountMinor, -2)
	if amount.InexactFloat64() > maxAmount {
		return "", ErrInvalidAmount
	}

	if p.Creditor.empty() {
		return "", ErrMissingCreditor
	}

	refType := p.ReferenceType
	reference := strings.TrimSpace(p.Reference)
	if refType == "" {
		if reference != "" {
			refType = ReferenceQRR
		} else {
			refType = ReferenceNON
		}
	}
	switch refType {
	case ReferenceQRR:
		formatted, err := FormatQRReference(reference)
		if err != nil {
			return "", err
		}
		reference = formatted
		if !IsQRIBAN(iban) {
			return "", ErrReferenceIBAN
		}
	case ReferenceNON:
		if reference != "" {
			return "", ErrInvalidReference
		}
		if IsQRIBAN(iban) {
			return "", ErrReferenceIBAN
		}
	default:
		return "", ErrInvalidReference
	}

	lines := []string{
		qrType,
		version,
		codingLatin,
		iban,
	}
	lines = append(lines, partyLines(p.Creditor)...)
	// Ultimate creditor is reserved for future use and stays empty.
	lines = append(lines, "", "", "", "", "", "", "")
	lines = append(lines,
		amount.StringFixed(2),
		currency,
	)
	lines = append(lines, partyLines(p.Debtor)...)
	lines = append(lines,
		string(refType),
		reference,
		sanitizeText(p.Message, 140),
		trailer,
	)

	return strings.Join(lines, "\n"), nil
}

// partyLines renders a combined-address element set: address type K, name,
// street on line 1, postal code and town on line 2, blank structured fields,
// then the country.
func partyLines(p Party) []string {
	if p.empty() {
		return []string{"", "", "", "", "", "", ""}
	}
	location := strings.TrimSpace(strings.TrimSpace(p.PostalCode) + " " + strings.TrimSpace(p.City))
	return []string{
		"K",
		sanitizeText(p.Name, 70),
		sanitizeText(p.Street, 70),
		sanitizeText(location, 70),
		"",
		"",
		strings.ToUpper(strings.TrimSpace(p.Country)),
	}
}

// sanitizeText collapses control characters and enforces the element length
// caps of the payment standard.
func sanitizeText(value string, limit int) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len([]rune(out)) > limit {
		out = string([]rune(out)[:limit])
	}
	return out
}

// DownloadFilename derives the slip's document name from an invoice number.
func DownloadFilename(invoiceNumber string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(invoiceNumber))
	if cleaned == "" {
		cleaned = "invoice"
	}
	return fmt.Sprintf("%s.pdf", cleaned)
}
