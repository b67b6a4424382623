package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/obs"
	"flight-price-service/internal/ports"

	"github.com/google/uuid"
)

var ErrAlreadyRunning = errors.New("already running")

const initFailureSubject = "Flight Price Tracker - Initialization Failed"

// DefaultReportTimeout bounds report and failure-notice delivery.
const DefaultReportTimeout = 2 * time.Minute

// StartResult answers a sweep trigger.
type StartResult struct {
	Accepted bool
	RunID    string
	Reason   string
}

// Runner owns the lifecycle of one sweep at a time: exclusion through the
// shared Status, provider construction, persistence, then reporting.
type Runner struct {
	Status      *Status
	NewProvider ports.ProviderFactory
	Store       ports.ResultStore
	Reports     ports.ReportSender // nil disables reports

	// ReportTimeout bounds each delivery; zero means DefaultReportTimeout.
	ReportTimeout time.Duration

	Matrix domain.RouteMatrix
	Trip   domain.TripSpec
	Pacing time.Duration
	Pace   func(ctx context.Context, d time.Duration) error
	Now    func() time.Time
	Logger *slog.Logger

	// BaseContext is the parent of background sweeps started by StartSweep.
	BaseContext context.Context

	wg sync.WaitGroup
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) reportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.ReportTimeout
	if timeout <= 0 {
		timeout = DefaultReportTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// StartSweep claims the status slot and runs the sweep on its own goroutine.
// It never blocks on the sweep itself.
func (r *Runner) StartSweep() StartResult {
	runID := uuid.NewString()
	if !r.Status.TryStart(runID) {
		return StartResult{Accepted: false, Reason: ErrAlreadyRunning.Error()}
	}

	ctx := r.BaseContext
	if ctx == nil {
		ctx = context.Background()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.execute(ctx, runID)
	}()

	return StartResult{Accepted: true, RunID: runID}
}

// RunSweep runs one sweep on the calling goroutine.
func (r *Runner) RunSweep(ctx context.Context) (*domain.SweepResult, error) {
	runID := uuid.NewString()
	if !r.Status.TryStart(runID) {
		return nil, ErrAlreadyRunning
	}
	return r.execute(ctx, runID)
}

// Wait blocks until background sweeps started so far have returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) execute(ctx context.Context, runID string) (res *domain.SweepResult, err error) {
	ctx = obs.WithLogger(context.WithValue(ctx, obs.RunIDKey, runID), r.logger())
	logger := obs.Logger(ctx)

	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("sweep panicked: %v", p)
		}
		if err != nil {
			logger.Error("sweep aborted", "err", err)
		}
		r.Status.Finish(err)
	}()

	start := r.now()

	provider, err := r.NewProvider()
	if err != nil {
		err = fmt.Errorf("sweep: initialize price provider: %w", err)
		r.notifyFailure(ctx, logger, err)
		return nil, err
	}

	sweeper := &Sweeper{
		Provider: provider,
		Pacing:   r.Pacing,
		Pace:     r.Pace,
		Now:      r.Now,
	}
	res, err = sweeper.RunSweep(ctx, r.Matrix, r.Trip, r.Status)
	if err != nil {
		return nil, err
	}
	res.RunID = runID

	date := start.Format(domain.DateLayout)
	if err := r.Store.SaveSweep(ctx, date, res); err != nil {
		return nil, fmt.Errorf("sweep: persist results for %s: %w", date, err)
	}
	logger.Info("sweep persisted", "date", date, "routes", len(res.Outcomes), "succeeded", res.SuccessCount())

	if r.Reports != nil {
		rctx, cancel := r.reportContext(ctx)
		defer cancel()
		if err := r.Reports.SendReport(rctx, res); err != nil {
			logger.Error("report delivery failed", "err", err)
		}
	}

	return res, nil
}

func (r *Runner) notifyFailure(ctx context.Context, logger *slog.Logger, cause error) {
	if r.Reports == nil {
		return
	}
	msg := fmt.Sprintf("The flight price sweep could not start.\n\nError: %v", cause)
	rctx, cancel := r.reportContext(ctx)
	defer cancel()
	if err := r.Reports.SendFailure(rctx, initFailureSubject, msg); err != nil {
		logger.Error("failure notice delivery failed", "err", err)
	}
}
