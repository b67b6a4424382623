package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/obs"
	"flight-price-service/internal/ports"
)

// DefaultPacing is the delay before each provider call.
const DefaultPacing = time.Second

// Sweeper drives one origin x destination matrix through a price provider.
type Sweeper struct {
	Provider ports.PriceProvider
	Pacing   time.Duration

	// Pace waits d or until ctx is done. Defaults to a timer wait.
	Pace func(ctx context.Context, d time.Duration) error
	Now  func() time.Time
}

func (s *Sweeper) pace(ctx context.Context) error {
	if s.Pace != nil {
		return s.Pace(ctx, s.Pacing)
	}
	return sleepContext(ctx, s.Pacing)
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSweep quotes every ordered pair, origins outer and destinations inner.
// A failed pair becomes an unavailable outcome and the loop continues; only
// an invalid matrix or an interrupted pacing wait aborts the sweep.
func (s *Sweeper) RunSweep(
	ctx context.Context,
	matrix domain.RouteMatrix,
	trip domain.TripSpec,
	publisher ProgressPublisher,
) (_ *domain.SweepResult, err error) {
	defer obs.Time(ctx, "sweep.RunSweep")(&err)

	if s.Provider == nil {
		return nil, errors.New("run sweep: provider is nil")
	}
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("run sweep: %w", err)
	}

	logger := obs.Logger(ctx)
	progress, err := NewProgressReporter(matrix.Size(), publisher, s.Now)
	if err != nil {
		return nil, fmt.Errorf("run sweep: %w", err)
	}
	progress.logger = logger

	runID, _ := ctx.Value(obs.RunIDKey).(string)
	result := &domain.SweepResult{
		RunID:     runID,
		Matrix:    matrix,
		Currency:  trip.Currency,
		Outcomes:  make([]domain.RouteOutcome, 0, matrix.Size()),
		StartedAt: s.now(),
	}

	logger.Info("sweep started", "routes", matrix.Size(), "origins", len(matrix.Origins), "destinations", len(matrix.Destinations))

	for _, pair := range matrix.Pairs() {
		if pair.SameAirport() {
			result.Outcomes = append(result.Outcomes, domain.RouteOutcome{
				Origin:      pair.Origin,
				Destination: pair.Destination,
				Status:      domain.OutcomeSameAirport,
			})
			progress.Record(pair.Origin, pair.Destination, false, domain.NotAvailable)
			continue
		}

		if err := s.pace(ctx); err != nil {
			return nil, fmt.Errorf("run sweep: pacing before %s: %w", pair.Label(), err)
		}

		outcome := s.quote(ctx, logger, pair, trip)
		result.Outcomes = append(result.Outcomes, outcome)
		progress.Record(pair.Origin, pair.Destination, outcome.Succeeded(), outcome.DisplayPrice())
	}

	result.MinPrice = domain.MinAmount(result.Outcomes)
	result.FinishedAt = s.now()

	snap := progress.Snapshot()
	logger.Info("sweep finished",
		"succeeded", snap.Succeeded,
		"total", snap.Total,
		"min_price", result.MinPrice.Decimal.String(),
		"has_min_price", result.MinPrice.Valid,
		"elapsed", snap.Elapsed.Round(time.Second),
	)

	return result, nil
}

// quote asks the provider for one pair. Every error stays inside the pair.
func (s *Sweeper) quote(
	ctx context.Context,
	logger *slog.Logger,
	pair domain.RoutePair,
	trip domain.TripSpec,
) domain.RouteOutcome {
	outcome := domain.RouteOutcome{Origin: pair.Origin, Destination: pair.Destination}

	q, err := s.Provider.Quote(ctx, pair.Origin, pair.Destination, trip)
	if err != nil {
		var pf *domain.ProviderFailure
		if !errors.As(err, &pf) {
			pf = domain.UnexpectedFailure(err)
		}
		logger.Warn("route quote failed", "route", pair.Label(), "kind", string(pf.Kind), "err", pf)
		outcome.Status = domain.OutcomeUnavailable
		outcome.Failure = pf.Kind
		return outcome
	}

	outcome.Status = domain.OutcomePriced
	outcome.Price = q.Price
	outcome.Itinerary = q.Itinerary

	amount, err := domain.ParsePrice(q.Price, trip.Currency)
	if err != nil {
		logger.Warn("route price not numeric", "route", pair.Label(), "price", q.Price, "err", err)
		return outcome
	}
	outcome.Amount.Decimal = amount
	outcome.Amount.Valid = true
	return outcome
}
