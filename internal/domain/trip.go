package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the provider and the store.
const DateLayout = "2006-01-02"

type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

var cabinShortCodes = map[string]CabinClass{
	"E": CabinEconomy,
	"W": CabinPremiumEconomy,
	"B": CabinBusiness,
	"F": CabinFirst,
}

// ParseCabinClass accepts either a provider class name or the one-letter
// shorthand (E, W, B, F).
func ParseCabinClass(s string) (CabinClass, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if c, ok := cabinShortCodes[s]; ok {
		return c, nil
	}
	switch CabinClass(s) {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return CabinClass(s), nil
	}
	return "", fmt.Errorf("parse cabin class: unknown class %q", s)
}

// Trip parameters shared by every quote in one sweep.
// TripSpec is passed by value so a sweep cannot observe later changes.
type TripSpec struct {
	DepartureDate time.Time
	ReturnDate    *time.Time
	Cabin         CabinClass
	Currency      string
	Adults        int
	MaxOffers     int
	NonStop       bool
}

// RoundTrip reports whether a return date is present.
func (t TripSpec) RoundTrip() bool {
	return t.ReturnDate != nil
}

func (t TripSpec) Validate() error {
	if t.DepartureDate.IsZero() {
		return fmt.Errorf("trip spec: departure date is required")
	}
	if t.ReturnDate != nil && t.ReturnDate.Before(t.DepartureDate) {
		return fmt.Errorf("trip spec: return date %s is before departure date %s",
			t.ReturnDate.Format(DateLayout), t.DepartureDate.Format(DateLayout))
	}
	if len(t.Currency) != 3 {
		return fmt.Errorf("trip spec: currency %q must be a 3-letter code", t.Currency)
	}
	if t.Adults < 1 {
		return fmt.Errorf("trip spec: adults must be at least 1")
	}
	if t.MaxOffers < 1 {
		return fmt.Errorf("trip spec: max offers must be at least 1")
	}
	return nil
}
