package repositories

import (
	"context"
	"fmt"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/ports"
)

// CopyHistory replays every stored search date of src into dst, rebuilding
// one SweepResult per date from its result rows and run record. Dates that
// already exist in dst are replaced. It returns the number of dates copied.
func CopyHistory(ctx context.Context, src, dst ports.ResultStore) (int, error) {
	dates, err := src.SearchDates(ctx)
	if err != nil {
		return 0, fmt.Errorf("copy history: list dates: %w", err)
	}

	runs, err := src.JobRuns(ctx, len(dates)+1)
	if err != nil {
		return 0, fmt.Errorf("copy history: list runs: %w", err)
	}
	runByDate := make(map[string]domain.JobRun, len(runs))
	for _, r := range runs {
		runByDate[r.RunDate] = r
	}

	for _, date := range dates {
		rows, err := src.ResultsByDate(ctx, date)
		if err != nil {
			return 0, fmt.Errorf("copy history: read %s: %w", date, err)
		}

		res := sweepFromRows(date, rows, runByDate[date])
		if err := dst.SaveSweep(ctx, date, res); err != nil {
			return 0, fmt.Errorf("copy history: write %s: %w", date, err)
		}
	}

	return len(dates), nil
}

func sweepFromRows(date string, rows []domain.StoredResult, run domain.JobRun) *domain.SweepResult {
	res := &domain.SweepResult{
		RunID:      run.RunID,
		Currency:   run.Currency,
		Outcomes:   make([]domain.RouteOutcome, 0, len(rows)),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	for _, r := range rows {
		res.Outcomes = append(res.Outcomes, r.Outcome())
		if res.Currency == "" {
			res.Currency = r.Currency
		}
		if res.FinishedAt.IsZero() {
			res.FinishedAt = r.CreatedAt
		}
	}
	if res.RunID == "" {
		res.RunID = "import-" + date
	}
	if res.StartedAt.IsZero() {
		res.StartedAt = res.FinishedAt
	}
	if res.FinishedAt.IsZero() {
		if d, err := time.Parse(domain.DateLayout, date); err == nil {
			res.StartedAt, res.FinishedAt = d, d
		}
	}
	res.MinPrice = domain.MinAmount(res.Outcomes)
	return res
}
