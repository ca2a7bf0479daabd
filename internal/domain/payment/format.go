package payment

import "strings"

const (
	cardDigits   = 16
	expiryLength = 5
	cvvDigits    = 3
)

func digitsOnly(value string, limit int) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			if b.Len() == limit {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps up to 16 digits and groups them by four.
func FormatCardNumber(value string) string {
	digits := digitsOnly(value, cardDigits)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry produces MM/YY from the digits of value.
func FormatExpiry(value string) string {
	digits := digitsOnly(value, 4)
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

func FormatCVV(value string) string {
	return digitsOnly(value, cvvDigits)
}

func FormatHolder(value string) string {
	return strings.ToUpper(value)
}

// MaskCardNumber hides all but the last four digits.
func MaskCardNumber(value string) string {
	return "****" + LastFour(value)
}

// LastFour returns the last four card digits, or "" for shorter input.
func LastFour(value string) string {
	digits := digitsOnly(value, cardDigits)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

// CardBrand guesses the network from the leading digits.
func CardBrand(value string) string {
	digits := digitsOnly(value, cardDigits)
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	case len(digits) >= 4 && digits[:4] >= "2221" && digits[:4] <= "2720":
		return "mastercard"
	default:
		return "unknown"
	}
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
