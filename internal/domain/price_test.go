package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		currency string
		want     string
	}{
		{name: "plain integer", text: "100", currency: "CNY", want: "100"},
		{name: "plain decimal", text: "1234.56", currency: "CNY", want: "1234.56"},
		{name: "thousands separator", text: "12,345.60", currency: "CNY", want: "12345.6"},
		{name: "currency prefix", text: "CNY 3,210.00", currency: "CNY", want: "3210"},
		{name: "currency suffix", text: "880 cny", currency: "CNY", want: "880"},
		{name: "dollar symbol", text: "$1,099.99", currency: "USD", want: "1099.99"},
		{name: "euro symbol no currency", text: "€45", currency: "", want: "45"},
		{name: "surrounding whitespace", text: "  77.5  ", currency: "EUR", want: "77.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.text, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParsePrice_Absent(t *testing.T) {
	_, err := ParsePrice("   ", "CNY")
	assert.ErrorIs(t, err, ErrPriceAbsent)
}

func TestParsePrice_Invalid(t *testing.T) {
	for _, text := range []string{"N/A", "CNY", "12.3.4", "-50", "about 100"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParsePrice(text, "CNY")
			var pe *PriceParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, text, pe.Text)
			assert.NotErrorIs(t, err, ErrPriceAbsent)
		})
	}
}
