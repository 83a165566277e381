package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as Peruvian soles with thousands
// separators, e.g. "S/ 12,500.00".
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-3:]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	result := "S/ " + b.String() + fracPart
	if negative {
		result = "-" + result
	}
	return result
}

// FormatDate renders a date in the dd/mm/yyyy form used across reports
// and notifications.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
