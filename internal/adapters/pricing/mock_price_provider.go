package pricing

import (
	"context"
	"flight-price-service/internal/domain"
	"sync"
)

type MockRoute struct {
	From, To  string
	Price     string
	Itinerary string
	Err       error
}

// MockPriceProvider answers from a fixed table and records every call.
// Routes missing from the table report NoOfferFound.
type MockPriceProvider struct {
	mu    sync.Mutex
	m     map[string]MockRoute
	calls []domain.RoutePair
}

func NewMockPriceProvider(routes []MockRoute) *MockPriceProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[r.From+"|"+r.To] = r
	}
	return &MockPriceProvider{m: m}
}

func (p *MockPriceProvider) Quote(ctx context.Context, origin, destination string, trip domain.TripSpec) (domain.Quote, error) {
	p.mu.Lock()
	p.calls = append(p.calls, domain.RoutePair{Origin: origin, Destination: destination})
	r, ok := p.m[origin+"|"+destination]
	p.mu.Unlock()

	if !ok {
		return domain.Quote{}, domain.NoOfferFound()
	}
	if r.Err != nil {
		return domain.Quote{}, classify(r.Err)
	}

	return domain.Quote{Price: r.Price, Itinerary: r.Itinerary}, nil
}

// Calls returns the pairs quoted so far, in call order.
func (p *MockPriceProvider) Calls() []domain.RoutePair {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.RoutePair(nil), p.calls...)
}
