package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flight-price-service/internal/domain"
)

// ProgressSnapshot is a point-in-time copy of sweep progress.
type ProgressSnapshot struct {
	Total        int
	Completed    int
	Succeeded    int
	Failed       int
	Elapsed      time.Duration
	ETA          time.Duration
	CurrentRoute string
}

// Percent returns completed/total as a whole percentage.
func (s ProgressSnapshot) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// ProgressPublisher receives every snapshot a reporter produces.
type ProgressPublisher interface {
	Publish(ProgressSnapshot)
}

// ProgressReporter counts finished route pairs for one sweep and pushes each
// new snapshot to its publisher. Counts only ever grow and
// Completed == Succeeded + Failed <= Total.
type ProgressReporter struct {
	mu        sync.Mutex
	snap      ProgressSnapshot
	start     time.Time
	now       func() time.Time
	publisher ProgressPublisher
	logger    *slog.Logger
}

func NewProgressReporter(total int, publisher ProgressPublisher, now func() time.Time) (*ProgressReporter, error) {
	if total <= 0 {
		return nil, errors.New("progress reporter: total must be positive")
	}
	if now == nil {
		now = time.Now
	}

	return &ProgressReporter{
		snap:      ProgressSnapshot{Total: total},
		start:     now(),
		now:       now,
		publisher: publisher,
		logger:    slog.Default(),
	}, nil
}

// Record marks one pair as finished and publishes the resulting snapshot.
// Calls beyond Total are ignored.
func (p *ProgressReporter) Record(origin, destination string, succeeded bool, price string) ProgressSnapshot {
	p.mu.Lock()
	if p.snap.Completed >= p.snap.Total {
		snap := p.snap
		p.mu.Unlock()
		return snap
	}

	p.snap.Completed++
	if succeeded {
		p.snap.Succeeded++
	} else {
		p.snap.Failed++
	}
	p.snap.CurrentRoute = domain.RoutePair{Origin: origin, Destination: destination}.Label()
	p.snap.Elapsed = p.now().Sub(p.start)
	p.snap.ETA = p.snap.Elapsed / time.Duration(p.snap.Completed) * time.Duration(p.snap.Total-p.snap.Completed)
	snap := p.snap
	p.mu.Unlock()

	status := "FAILED"
	if succeeded {
		status = "SUCCESS"
	}
	p.logger.Info("route checked",
		"route", fmt.Sprintf("%d/%d", snap.Completed, snap.Total),
		"origin", origin,
		"destination", destination,
		"status", status,
		"price", price,
		"progress_pct", snap.Percent(),
		"elapsed", snap.Elapsed.Round(time.Second),
		"eta", snap.ETA.Round(time.Second),
	)

	if p.publisher != nil {
		p.publisher.Publish(snap)
	}
	return snap
}

func (p *ProgressReporter) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}
