package ports

import (
	"context"
	"flight-price-service/internal/domain"
)

// Port: persistence for completed sweeps and the history queries built on them.
type ResultStore interface {
	// Replace all stored results and the run record for date with result.
	SaveSweep(ctx context.Context, date string, result *domain.SweepResult) error

	LatestResults(ctx context.Context) ([]domain.StoredResult, error)
	ResultsByDate(ctx context.Context, date string) ([]domain.StoredResult, error)
	PriceHistory(ctx context.Context, origin, destination string, limit int) ([]domain.PricePoint, error)
	JobRuns(ctx context.Context, limit int) ([]domain.JobRun, error)
	SearchDates(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}
