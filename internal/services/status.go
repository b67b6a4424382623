package services

import (
	"sync"
	"time"
)

const (
	routeInitializing = "Initializing..."
	routeCompleted    = "Completed!"
)

// StatusView is what dashboard and API readers see.
type StatusView struct {
	Running      bool
	RunID        string
	LastRun      time.Time // zero until a sweep completes
	Progress     int
	CurrentRoute string
	Error        string
	Completed    int
	Total        int
	Succeeded    int
	Failed       int
	ETA          time.Duration
}

// Status is the single process-wide sweep slot shared by the runner and
// HTTP readers. Create one with NewStatus at startup and pass it by pointer.
type Status struct {
	mu       sync.RWMutex
	running  bool
	runID    string
	progress ProgressSnapshot
	lastRun  time.Time
	lastErr  string
	now      func() time.Time
}

func NewStatus() *Status {
	return &Status{now: time.Now}
}

// TryStart flips the slot to running. It returns false, changing nothing,
// when a sweep is already running.
func (s *Status) TryStart(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.runID = runID
	s.lastErr = ""
	s.progress = ProgressSnapshot{CurrentRoute: routeInitializing}
	return true
}

// Publish stores the latest progress of the running sweep.
func (s *Status) Publish(snap ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.progress = snap
}

// Finish returns the slot to idle. A nil err records the completion time;
// otherwise the error message is kept for readers.
func (s *Status) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.lastRun = s.now()
	s.progress.CurrentRoute = routeCompleted
	s.progress.ETA = 0
}

func (s *Status) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Status) View() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := StatusView{
		Running:      s.running,
		RunID:        s.runID,
		LastRun:      s.lastRun,
		Progress:     s.progress.Percent(),
		CurrentRoute: s.progress.CurrentRoute,
		Error:        s.lastErr,
		Completed:    s.progress.Completed,
		Total:        s.progress.Total,
		Succeeded:    s.progress.Succeeded,
		Failed:       s.progress.Failed,
		ETA:          s.progress.ETA,
	}
	if !s.running && s.lastErr == "" && !s.lastRun.IsZero() {
		v.Progress = 100
	}
	return v
}
