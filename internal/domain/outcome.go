package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Presentation sentinels. They are produced only by the Display* methods and
// never stored in place of missing data.
const (
	NotAvailable    = "N/A"
	NotFound        = "Not found"
	SameAirportNote = "Same origin & destination"
)

// Quote is a successful provider answer for one route pair.
type Quote struct {
	Price     string // provider's grand total text, e.g. "1234.56"
	Itinerary string // "MU5101 / EK303 <-> EK302 / MU5102"
}

type OutcomeStatus string

const (
	OutcomePriced      OutcomeStatus = "priced"
	OutcomeUnavailable OutcomeStatus = "unavailable"
	OutcomeSameAirport OutcomeStatus = "same_airport"
)

// Recorded result for one route pair in a sweep.
// Exactly one outcome exists per ordered pair once the sweep completes.
type RouteOutcome struct {
	Origin      string
	Destination string
	Status      OutcomeStatus
	Price       string              // raw provider text, empty unless priced
	Amount      decimal.NullDecimal // valid iff Price parsed
	Itinerary   string
	Failure     FailureKind
}

func (o RouteOutcome) Pair() RoutePair {
	return RoutePair{Origin: o.Origin, Destination: o.Destination}
}

func (o RouteOutcome) Succeeded() bool {
	return o.Status == OutcomePriced
}

func (o RouteOutcome) DisplayPrice() string {
	if o.Status != OutcomePriced || o.Price == "" {
		return NotAvailable
	}
	return o.Price
}

func (o RouteOutcome) DisplayItinerary() string {
	switch {
	case o.Status == OutcomeSameAirport:
		return SameAirportNote
	case o.Status != OutcomePriced || o.Itinerary == "":
		return NotFound
	default:
		return o.Itinerary
	}
}

// SweepResult is the finalized, read-only output of one sweep run.
type SweepResult struct {
	RunID      string
	Matrix     RouteMatrix
	Currency   string
	Outcomes   []RouteOutcome
	MinPrice   decimal.NullDecimal
	StartedAt  time.Time
	FinishedAt time.Time
}

// SuccessCount returns the number of priced outcomes.
func (r *SweepResult) SuccessCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Outcome returns the outcome for a pair, if present.
func (r *SweepResult) Outcome(origin, destination string) (RouteOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Origin == origin && o.Destination == destination {
			return o, true
		}
	}
	return RouteOutcome{}, false
}

// MinAmount returns the smallest parsed amount across outcomes.
// The result is invalid when no outcome carries an amount.
func MinAmount(outcomes []RouteOutcome) decimal.NullDecimal {
	var min decimal.NullDecimal
	for _, o := range outcomes {
		if !o.Amount.Valid {
			continue
		}
		if !min.Valid || o.Amount.Decimal.LessThan(min.Decimal) {
			min = decimal.NullDecimal{Decimal: o.Amount.Decimal, Valid: true}
		}
	}
	return min
}
