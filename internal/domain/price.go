package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrPriceAbsent is returned when there is no price text to parse.
var ErrPriceAbsent = errors.New("price absent")

// PriceParseError reports price text that is present but not a usable amount.
type PriceParseError struct {
	Text   string
	Reason string
}

func (e *PriceParseError) Error() string {
	return fmt.Sprintf("parse price %q: %s", e.Text, e.Reason)
}

var currencySymbols = []string{"$", "€", "£", "¥"}

// ParsePrice converts provider or stored price text into an amount.
//
// Accepted formats:
//   - plain decimals: "1234", "1234.56"
//   - thousands separators: "1,234.56"
//   - an ISO currency code before or after the number: "CNY 1,234", "1234 CNY"
//   - a leading currency symbol: "$1,234.00", "€99"
//
// Blank text returns ErrPriceAbsent. Anything else that does not reduce to a
// non-negative decimal returns a *PriceParseError.
func ParsePrice(text, currency string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Decimal{}, ErrPriceAbsent
	}

	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		upper := strings.ToUpper(s)
		switch {
		case strings.HasPrefix(upper, c):
			s = s[len(c):]
		case strings.HasSuffix(upper, c):
			s = s[:len(s)-len(c)]
		}
	}
	for _, sym := range currencySymbols {
		s = strings.TrimPrefix(strings.TrimSpace(s), sym)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	if s == "" {
		return decimal.Decimal{}, &PriceParseError{Text: text, Reason: "no digits"}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &PriceParseError{Text: text, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Decimal{}, &PriceParseError{Text: text, Reason: "negative amount"}
	}

	return d, nil
}
