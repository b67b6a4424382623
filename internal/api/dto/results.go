package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ResultResponse struct {
	SearchDate  string              `json:"search_date"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Status      string              `json:"status"`
	Price       string              `json:"price"`
	Amount      decimal.NullDecimal `json:"amount"`
	Itinerary   string              `json:"itinerary"`
	Currency    string              `json:"currency"`
	Failure     string              `json:"failure,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type ListResultsResponse struct {
	SearchDate string           `json:"search_date,omitempty"`
	Results    []ResultResponse `json:"results"`
}

type PricePointResponse struct {
	SearchDate string              `json:"search_date"`
	Price      string              `json:"price"`
	Amount     decimal.NullDecimal `json:"amount"`
	Currency   string              `json:"currency"`
}

type PriceHistoryResponse struct {
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	History     []PricePointResponse `json:"history"`
}

type JobRunResponse struct {
	RunID            string              `json:"run_id"`
	RunDate          string              `json:"run_date"`
	Status           string              `json:"status"`
	TotalRoutes      int                 `json:"total_routes"`
	SuccessfulRoutes int                 `json:"successful_routes"`
	SuccessRate      float64             `json:"success_rate"`
	MinPrice         decimal.NullDecimal `json:"min_price"`
	Currency         string              `json:"currency"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
}

type ListJobRunsResponse struct {
	Runs []JobRunResponse `json:"runs"`
}

type SearchDatesResponse struct {
	Dates []string `json:"dates"`
}

type StatisticsResponse struct {
	TotalRuns          int                 `json:"total_runs"`
	AvgSuccessRate     float64             `json:"avg_success_rate"`
	BestPriceEver      decimal.NullDecimal `json:"best_price_ever"`
	TotalRoutesChecked int                 `json:"total_routes_checked"`
}
