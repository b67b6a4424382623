package report

import (
	"strings"
	"testing"
	"time"

	"flight-price-service/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2025, 9, 14, 9, 3, 0, 0, time.UTC)

func pricedOutcome(o, d, price, itinerary string) domain.RouteOutcome {
	amount := decimal.RequireFromString(strings.ReplaceAll(price, ",", ""))
	return domain.RouteOutcome{
		Origin:      o,
		Destination: d,
		Status:      domain.OutcomePriced,
		Price:       price,
		Amount:      decimal.NewNullDecimal(amount),
		Itinerary:   itinerary,
	}
}

func sampleResult() *domain.SweepResult {
	outcomes := []domain.RouteOutcome{
		{Origin: "SHA", Destination: "DXB", Status: domain.OutcomeUnavailable, Failure: domain.FailureTimeout},
		pricedOutcome("SHA", "YVR", "12,480.00", "MU5101 <-> MU5102"),
		pricedOutcome("NKG", "DXB", "4,980.50", "FM865 <-> FM866"),
		{Origin: "NKG", Destination: "YVR", Status: domain.OutcomeUnavailable, Failure: domain.FailureNoOfferFound},
	}
	return &domain.SweepResult{
		RunID:    "run-1",
		Matrix:   domain.RouteMatrix{Origins: []string{"SHA", "NKG"}, Destinations: []string{"DXB", "YVR"}},
		Currency: "CNY",
		Outcomes: outcomes,
		MinPrice: domain.MinAmount(outcomes),
	}
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderHTML_Layout(t *testing.T) {
	html, err := RenderHTML(sampleResult(), generated)
	require.NoError(t, err)
	doc := parse(t, html)

	headers := doc.Find("#fares th").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
	assert.Equal(t, []string{"Destination", "SHA", "NKG"}, headers)

	rows := doc.Find("#fares tr").Slice(1, goquery.ToEnd)
	require.Equal(t, 2, rows.Length())

	dxb := rows.Eq(0).Find("td")
	assert.Equal(t, "DXB", strings.TrimSpace(dxb.Eq(0).Text()))
	assert.Contains(t, dxb.Eq(1).Text(), domain.NotAvailable)
	assert.Contains(t, dxb.Eq(1).Find(".itinerary").Text(), domain.NotFound)
	assert.Equal(t, "4,980.50", dxb.Eq(2).Find(".best").Text())
	assert.Equal(t, "FM865 <-> FM866", dxb.Eq(2).Find(".itinerary").Text())

	assert.Equal(t, 1, doc.Find(".best").Length())

	assert.Contains(t, doc.Find("#success-rate").Text(), "2/4 routes (50.0%)")
	assert.Contains(t, doc.Find("#lowest-fare").Text(), "CNY 4,981")
	assert.Contains(t, html, "2025-09-14 09:03:00")
}

func TestRenderHTML_NoFares(t *testing.T) {
	res := sampleResult()
	for i := range res.Outcomes {
		res.Outcomes[i] = domain.RouteOutcome{
			Origin:      res.Outcomes[i].Origin,
			Destination: res.Outcomes[i].Destination,
			Status:      domain.OutcomeUnavailable,
		}
	}
	res.MinPrice = domain.MinAmount(res.Outcomes)

	html, err := RenderHTML(res, generated)
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, "No numeric fares were returned.", strings.TrimSpace(doc.Find("#lowest-fare").Text()))
	assert.Equal(t, 0, doc.Find(".best").Length())
	assert.Contains(t, doc.Find("#success-rate").Text(), "0/4 routes")
}

func TestRenderHTML_SameAirportCell(t *testing.T) {
	res := &domain.SweepResult{
		Matrix:   domain.RouteMatrix{Origins: []string{"A"}, Destinations: []string{"A"}},
		Currency: "USD",
		Outcomes: []domain.RouteOutcome{{Origin: "A", Destination: "A", Status: domain.OutcomeSameAirport}},
	}

	html, err := RenderHTML(res, generated)
	require.NoError(t, err)

	assert.Equal(t, domain.SameAirportNote, parse(t, html).Find(".itinerary").Text())
}

func TestRenderHTML_EscapesProviderText(t *testing.T) {
	res := sampleResult()
	res.Outcomes[1].Itinerary = "<script>alert(1)</script>"

	html, err := RenderHTML(res, generated)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Daily Flight Price Report – 2025-09-14", Subject(generated))
}
