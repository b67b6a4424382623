package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/obs"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds every provider request, including token refreshes.
const DefaultTimeout = 30 * time.Second

// AmadeusProvider implements PriceProvider using the Amadeus Flight Offers Search API.
//
// It coordinates:
//   - OAuth2 client-credentials authentication (token cached and refreshed)
//   - one bounded GET per quote, never retried
//   - classification of every failure into a domain.ProviderFailure
//
// The provider is safe for concurrent use.
type AmadeusProvider struct {
	session *http.Client
	baseURL string
}

func NewAmadeusProvider(clientID, clientSecret, baseURL string, timeout time.Duration) (*AmadeusProvider, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("amadeus credentials missing")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("amadeus base url %q is invalid", baseURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     u.String() + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Token requests go through a client with the same bound as quote requests.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	session := cc.Client(tokenCtx)
	session.Timeout = timeout

	return &AmadeusProvider{
		session: session,
		baseURL: u.String(),
	}, nil
}

// Quote returns the lowest-priced offer for origin -> destination.
func (a *AmadeusProvider) Quote(
	ctx context.Context,
	origin string,
	destination string,
	trip domain.TripSpec,
) (_ domain.Quote, err error) {
	defer obs.Time(ctx, "amadeus.Quote")(&err)

	if origin == "" || destination == "" {
		return domain.Quote{}, domain.UnexpectedFailure(errors.New("origin and destination must be non-empty"))
	}
	if origin == destination {
		return domain.Quote{}, domain.UnexpectedFailure(fmt.Errorf("origin and destination are both %q", origin))
	}

	req, err := a.newRequest(ctx, http.MethodGet, a.baseURL+"/v2/shopping/flight-offers")
	if err != nil {
		return domain.Quote{}, domain.UnexpectedFailure(err)
	}
	req.URL.RawQuery = offerQuery(origin, destination, trip).Encode()

	resp, err := a.do(req)
	if err != nil {
		return domain.Quote{}, classify(err)
	}
	defer resp.Body.Close()

	offers, err := decodeOffers(resp.Body)
	if err != nil {
		return domain.Quote{}, domain.UnexpectedFailure(err)
	}

	offer, ok := cheapestOffer(offers, trip.Currency)
	if !ok {
		return domain.Quote{}, domain.NoOfferFound()
	}

	return domain.Quote{
		Price:     offer.Price.GrandTotal,
		Itinerary: offer.itinerary(),
	}, nil
}

func offerQuery(origin, destination string, trip domain.TripSpec) url.Values {
	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", trip.DepartureDate.Format(domain.DateLayout))
	if trip.ReturnDate != nil {
		q.Set("returnDate", trip.ReturnDate.Format(domain.DateLayout))
	}
	q.Set("adults", strconv.Itoa(trip.Adults))
	if trip.Cabin != "" {
		q.Set("travelClass", string(trip.Cabin))
	}
	q.Set("nonStop", strconv.FormatBool(trip.NonStop))
	q.Set("currencyCode", trip.Currency)
	q.Set("max", strconv.Itoa(trip.MaxOffers))
	return q
}
