package ports

import (
	"context"
	"flight-price-service/internal/domain"
)

// Contract for quoting the cheapest offer on one route.
type PriceProvider interface {
	// Return the lowest-priced offer for origin -> destination.
	// Every returned error is a *domain.ProviderFailure.
	Quote(ctx context.Context, origin, destination string, trip domain.TripSpec) (domain.Quote, error)
}

// Builds a provider for one sweep. A failure here aborts the sweep.
type ProviderFactory func() (PriceProvider, error)
