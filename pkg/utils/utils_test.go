package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"small amount", "150", "S/ 150.00"},
		{"thousands separator", "1000", "S/ 1,000.00"},
		{"large amount", "1234567.89", "S/ 1,234,567.89"},
		{"rounds to two decimals", "99.999", "S/ 100.00"},
		{"negative amount", "-2500.5", "-S/ 2,500.50"},
		{"zero", "0", "S/ 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FormatCurrency(amount))
		})
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "05/03/2024", FormatDate(date))
}

func TestDecimalFromString(t *testing.T) {
	d, err := DecimalFromString("5000.25")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("5000.25")))

	_, err = DecimalFromString("not-a-number")
	assert.Error(t, err)
}
