package qrbill

import (
	"errors"
	"strings"
)

// ReferenceType is the payment reference scheme of a slip.
type ReferenceType string

const (
	ReferenceQRR ReferenceType = "QRR"
	ReferenceNON ReferenceType = "NON"
)

var ErrInvalidReference = errors.New("invalid_reference")

// mod10Table is the recursive carry table of the modulo-10 algorithm used by
// Swiss QR references (and the ESR references before them).
var mod10Table = [10]int{0, 9, 4, 6, 8, 2, 7, 1, 3, 5}

// QRReferenceCheckDigit computes the check digit for the 26-digit base of a
// QR reference.
func QRReferenceCheckDigit(base string) (int, error) {
	carry := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0, ErrInvalidReference
		}
		carry = mod10Table[(carry+int(r-'0'))%10]
	}
	return (10 - carry) % 10, nil
}

// FormatQRReference left-pads a numeric payment reference to 26 digits and
// appends the check digit, producing the 27-digit QRR form.
func FormatQRReference(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if digits == "" || len(digits) > 26 {
		return "", ErrInvalidReference
	}
	base := strings.Repeat("0", 26-len(digits)) + digits
	check, err := QRReferenceCheckDigit(base)
	if err != nil {
		return "", err
	}
	return base + string(rune('0'+check)), nil
}

// ResolveQRReference canonicalizes a raw payment reference into the 27-digit
// QRR form. A full 27-digit reference is checked against its own check digit;
// anything shorter is zero-padded and checksummed.
func ResolveQRReference(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if len(digits) == 27 {
		if err := ValidateQRReference(digits); err != nil {
			return "", err
		}
		return digits, nil
	}
	return FormatQRReference(digits)
}

// ValidateQRReference checks a full 27-digit QR reference including its
// check digit.
func ValidateQRReference(reference string) error {
	if len(reference) != 27 {
		return ErrInvalidReference
	}
	check, err := QRReferenceCheckDigit(reference[:26])
	if err != nil {
		return err
	}
	if reference[26] != byte('0'+check) {
		return ErrInvalidReference
	}
	return nil
}
