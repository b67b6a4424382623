package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestMinAmount(t *testing.T) {
	outcomes := []RouteOutcome{
		{Origin: "A", Destination: "C", Status: OutcomePriced, Price: "100", Amount: amount("100")},
		{Origin: "B", Destination: "A", Status: OutcomeUnavailable, Failure: FailureNoOfferFound},
		{Origin: "B", Destination: "C", Status: OutcomePriced, Price: "80", Amount: amount("80")},
		{Origin: "B", Destination: "D", Status: OutcomePriced, Price: "see site"},
	}

	min := MinAmount(outcomes)
	assert.True(t, min.Valid)
	assert.Equal(t, "80", min.Decimal.String())
}

func TestMinAmount_NoneParsed(t *testing.T) {
	min := MinAmount([]RouteOutcome{
		{Origin: "A", Destination: "A", Status: OutcomeSameAirport},
		{Origin: "A", Destination: "B", Status: OutcomeUnavailable, Failure: FailureTimeout},
	})
	assert.False(t, min.Valid)
}

func TestRouteOutcomeDisplay(t *testing.T) {
	same := RouteOutcome{Origin: "A", Destination: "A", Status: OutcomeSameAirport}
	assert.Equal(t, NotAvailable, same.DisplayPrice())
	assert.Equal(t, SameAirportNote, same.DisplayItinerary())

	failed := RouteOutcome{Origin: "A", Destination: "B", Status: OutcomeUnavailable, Failure: FailureTimeout}
	assert.Equal(t, NotAvailable, failed.DisplayPrice())
	assert.Equal(t, NotFound, failed.DisplayItinerary())

	ok := RouteOutcome{Origin: "A", Destination: "B", Status: OutcomePriced, Price: "100", Itinerary: "MU1"}
	assert.Equal(t, "100", ok.DisplayPrice())
	assert.Equal(t, "MU1", ok.DisplayItinerary())
	assert.True(t, ok.Succeeded())
}

func TestProviderFailureError(t *testing.T) {
	assert.Equal(t, "provider error [429]: rate limited", ProviderRejected(429, "rate limited").Error())
	assert.Equal(t, "no offer found", NoOfferFound().Error())
}
