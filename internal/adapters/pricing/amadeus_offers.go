package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"flight-price-service/internal/domain"

	"github.com/shopspring/decimal"
)

type offersResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
		} `json:"segments"`
	} `json:"itineraries"`
}

func decodeOffers(r io.Reader) ([]flightOffer, error) {
	var decoded offersResponse
	if err := json.NewDecoder(r).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode flight offers response: %w", err)
	}
	return decoded.Data, nil
}

// cheapestOffer picks the offer with the lowest parseable grand total.
// When no total parses, the provider's first offer (its own price order) wins.
func cheapestOffer(offers []flightOffer, currency string) (flightOffer, bool) {
	if len(offers) == 0 {
		return flightOffer{}, false
	}

	best := -1
	var bestAmount decimal.Decimal
	for i, o := range offers {
		amount, err := domain.ParsePrice(o.Price.GrandTotal, currency)
		if err != nil {
			continue
		}
		if best == -1 || amount.LessThan(bestAmount) {
			best, bestAmount = i, amount
		}
	}
	if best == -1 {
		best = 0
	}
	return offers[best], true
}

// itinerary renders "MU5101 / EK303 <-> EK302 / MU5102": segments joined per
// leg, legs joined with a distinct separator.
func (o flightOffer) itinerary() string {
	legs := make([]string, 0, len(o.Itineraries))
	for _, it := range o.Itineraries {
		segs := make([]string, 0, len(it.Segments))
		for _, s := range it.Segments {
			segs = append(segs, s.CarrierCode+s.Number)
		}
		legs = append(legs, strings.Join(segs, " / "))
	}
	return strings.Join(legs, " <-> ")
}
