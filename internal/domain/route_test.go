package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteMatrix(t *testing.T) {
	m, err := NewRouteMatrix([]string{" sha", "NKG"}, []string{"dxb"})
	require.NoError(t, err)

	assert.Equal(t, []string{"SHA", "NKG"}, m.Origins)
	assert.Equal(t, []string{"DXB"}, m.Destinations)
	assert.Equal(t, 2, m.Size())
}

func TestNewRouteMatrix_Empty(t *testing.T) {
	_, err := NewRouteMatrix(nil, []string{"DXB"})
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = NewRouteMatrix([]string{"SHA"}, []string{})
	assert.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestRouteMatrixPairs_OriginsOuterLoop(t *testing.T) {
	m := RouteMatrix{Origins: []string{"A", "B"}, Destinations: []string{"A", "C"}}

	assert.Equal(t, []RoutePair{
		{Origin: "A", Destination: "A"},
		{Origin: "A", Destination: "C"},
		{Origin: "B", Destination: "A"},
		{Origin: "B", Destination: "C"},
	}, m.Pairs())
	assert.True(t, m.Pairs()[0].SameAirport())
	assert.Equal(t, "B → C", m.Pairs()[3].Label())
}

func TestParseCabinClass(t *testing.T) {
	c, err := ParseCabinClass("b")
	require.NoError(t, err)
	assert.Equal(t, CabinBusiness, c)

	c, err = ParseCabinClass("PREMIUM_ECONOMY")
	require.NoError(t, err)
	assert.Equal(t, CabinPremiumEconomy, c)

	_, err = ParseCabinClass("X")
	assert.Error(t, err)
}

func TestTripSpecValidate(t *testing.T) {
	dep := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	ret := dep.AddDate(0, 0, 5)
	trip := TripSpec{DepartureDate: dep, ReturnDate: &ret, Cabin: CabinBusiness, Currency: "CNY", Adults: 1, MaxOffers: 1}

	require.NoError(t, trip.Validate())
	assert.True(t, trip.RoundTrip())

	early := dep.AddDate(0, 0, -1)
	bad := trip
	bad.ReturnDate = &early
	assert.Error(t, bad.Validate())

	bad = trip
	bad.Currency = "YUAN"
	assert.Error(t, bad.Validate())
}
