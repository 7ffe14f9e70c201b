// Package product holds catalogue rules used at the checkout station.
package product

import (
	"errors"
	"strings"
	"unicode"
)

const (
	MinBarcodeLength = 8
	MaxBarcodeLength = 20
)

var (
	ErrBarcodeEmpty    = errors.New("barcode is empty")
	ErrBarcodeTooShort = errors.New("barcode must have at least 8 digits")
	ErrBarcodeTooLong  = errors.New("barcode must have at most 20 digits")
)

// CleanBarcode keeps only ASCII digits.
func CleanBarcode(raw string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
}

// ValidateBarcode cleans a manually typed barcode and checks its length.
func ValidateBarcode(raw string) (string, error) {
	code := CleanBarcode(strings.TrimSpace(raw))
	switch {
	case code == "":
		return "", ErrBarcodeEmpty
	case len(code) < MinBarcodeLength:
		return code, ErrBarcodeTooShort
	case len(code) > MaxBarcodeLength:
		return code, ErrBarcodeTooLong
	}
	return code, nil
}
