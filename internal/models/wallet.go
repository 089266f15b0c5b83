package models

import "strings"

const (
	healthInsurerWidth = 4
	cardNumberWidth    = 13
)

// CanonicalWallet left-pads the insurer code to 4 and the card number to 13
// characters with zeros and concatenates them. Longer inputs are kept whole.
func CanonicalWallet(healthInsurer, cardNumber string) string {
	return PadHealthInsurer(healthInsurer) + leftPad(cardNumber, cardNumberWidth)
}

func PadHealthInsurer(healthInsurer string) string {
	return leftPad(healthInsurer, healthInsurerWidth)
}

// DirectoryQueryID returns the de-padded card suffix the detail endpoint
// expects: the last 13 characters of wallet without leading zeros.
func DirectoryQueryID(wallet string) string {
	suffix := wallet
	if len(suffix) > cardNumberWidth {
		suffix = suffix[len(suffix)-cardNumberWidth:]
	}
	return strings.TrimLeft(suffix, "0")
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
