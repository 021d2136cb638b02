package qrbill

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidIBAN     = errors.New("invalid_iban")
	ErrUnsupportedIBAN = errors.New("unsupported_iban_country")
)

// NormalizeIBAN strips whitespace and uppercases an account identifier.
func NormalizeIBAN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateIBAN checks the mod-97 checksum of a normalized IBAN. QR-bills
// additionally require a Swiss or Liechtenstein account; BuildPayload
// enforces that on top of this check.
func ValidateIBAN(iban string) error {
	if len(iban) < 15 || len(iban) > 34 {
		return ErrInvalidIBAN
	}
	for _, r := range iban {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ErrInvalidIBAN
		}
	}
	if mod97(iban[4:]+iban[:4]) != 1 {
		return ErrInvalidIBAN
	}
	return nil
}

// IsQRIBAN reports whether the institution identifier sits in the QR-IID
// range 30000-31999, which mandates a QRR structured reference.
func IsQRIBAN(iban string) bool {
	if len(iban) < 9 {
		return false
	}
	iid, err := strconv.Atoi(iban[4:9])
	if err != nil {
		return false
	}
	return iid >= 30000 && iid <= 31999
}

// mod97 computes the IBAN checksum (ISO 7064) digit by digit so arbitrary
// lengths never overflow.
func mod97(value string) int {
	remainder := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			n := int(r-'A') + 10
			remainder = (remainder*100 + n) % 97
		default:
			return -1
		}
	}
	return remainder
}
