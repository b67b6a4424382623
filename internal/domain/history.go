package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run status values persisted with each job run.
const (
	RunCompleted = "completed"
)

// Persisted outcome for one route on one search date.
type StoredResult struct {
	SearchDate  string
	Origin      string
	Destination string
	Status      OutcomeStatus
	Price       string
	Amount      decimal.NullDecimal
	Itinerary   string
	Currency    string
	Failure     FailureKind
	CreatedAt   time.Time
}

func (s StoredResult) Outcome() RouteOutcome {
	return RouteOutcome{
		Origin:      s.Origin,
		Destination: s.Destination,
		Status:      s.Status,
		Price:       s.Price,
		Amount:      s.Amount,
		Itinerary:   s.Itinerary,
		Failure:     s.Failure,
	}
}

// One priced observation of a route.
type PricePoint struct {
	SearchDate string
	Price      string
	Amount     decimal.NullDecimal
	Currency   string
}

// Summary record of one persisted sweep.
type JobRun struct {
	RunID            string
	RunDate          string
	Status           string
	TotalRoutes      int
	SuccessfulRoutes int
	MinPrice         decimal.NullDecimal
	Currency         string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// SuccessRate returns successful/total as a percentage.
func (j JobRun) SuccessRate() float64 {
	if j.TotalRoutes == 0 {
		return 0
	}
	return float64(j.SuccessfulRoutes) / float64(j.TotalRoutes) * 100
}

// Aggregates across all persisted runs.
type Statistics struct {
	TotalRuns          int
	AvgSuccessRate     float64
	BestPriceEver      decimal.NullDecimal
	TotalRoutesChecked int
}
