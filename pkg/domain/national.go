package domain

import (
	"strings"

	dErrors "roster/pkg/domain-errors"
)

// DPILength is the digit count of a national identity document number.
const DPILength = 13

// PhoneLength is the digit count of a local phone number.
const PhoneLength = 8

// DPI is a national identity document number.
// Invariant: exactly 13 ASCII digits.
type DPI string

// Phone is a local phone number.
// Invariant: exactly 8 ASCII digits.
type Phone string

// ParseDPI validates the document number format.
func ParseDPI(s string) (DPI, error) {
	s = strings.TrimSpace(s)
	if !allDigits(s, DPILength) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "El DPI debe tener 13 dígitos.")
	}
	return DPI(s), nil
}

// ParsePhone validates the phone number format.
func ParsePhone(s string) (Phone, error) {
	s = strings.TrimSpace(s)
	if !allDigits(s, PhoneLength) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "El teléfono debe tener 8 dígitos.")
	}
	return Phone(s), nil
}

func (d DPI) String() string   { return string(d) }
func (p Phone) String() string { return string(p) }

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
