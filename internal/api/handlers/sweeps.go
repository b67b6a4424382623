package handlers

import (
	"net/http"
	"time"

	"flight-price-service/internal/api/dto"
	"flight-price-service/internal/services"
)

const timestampLayout = "2006-01-02 15:04:05"

// SweepStarter is the trigger side of the sweep runner.
type SweepStarter interface {
	StartSweep() services.StartResult
}

// StatusReader exposes the shared sweep status without blocking on a sweep.
type StatusReader interface {
	View() services.StatusView
}

// SweepHandler starts sweeps and reports their progress.
type SweepHandler struct {
	Runner SweepStarter
	Status StatusReader
}

func (h *SweepHandler) SearchStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse(h.Status.View()))
}

// Start accepts a sweep and returns immediately; 409 when one is running.
func (h *SweepHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	res := h.Runner.StartSweep()
	body := dto.StartSweepResponse{Accepted: res.Accepted, RunID: res.RunID, Reason: res.Reason}
	if !res.Accepted {
		writeJSON(w, r, http.StatusConflict, body)
		return
	}
	writeJSON(w, r, http.StatusAccepted, body)
}

// Trigger is the dashboard form action; it redirects back with a notice.
func (h *SweepHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	notice := noticeStarted
	if res := h.Runner.StartSweep(); !res.Accepted {
		notice = noticeAlreadyRunning
	}
	http.Redirect(w, r, "/?notice="+notice, http.StatusSeeOther)
}

func statusResponse(v services.StatusView) dto.StatusResponse {
	res := dto.StatusResponse{
		Running:      v.Running,
		RunID:        v.RunID,
		Progress:     v.Progress,
		CurrentRoute: v.CurrentRoute,
		Completed:    v.Completed,
		Total:        v.Total,
		Succeeded:    v.Succeeded,
		Failed:       v.Failed,
		ETASeconds:   int64(v.ETA / time.Second),
	}
	if !v.LastRun.IsZero() {
		s := v.LastRun.Format(timestampLayout)
		res.LastRun = &s
	}
	if v.Error != "" {
		e := v.Error
		res.Error = &e
	}
	return res
}
