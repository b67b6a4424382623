package api

import (
	"log/slog"
	"net/http"

	"flight-price-service/internal/api/handlers"
	"flight-price-service/internal/ports"
)

// Dependencies of the HTTP surface.
type RouterDeps struct {
	Runner handlers.SweepStarter
	Status handlers.StatusReader
	Store  ports.ResultStore
	Logger *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	sweeps := &handlers.SweepHandler{Runner: deps.Runner, Status: deps.Status}
	results := &handlers.ResultsHandler{Store: deps.Store}
	dashboard := &handlers.DashboardHandler{Status: deps.Status, Store: deps.Store}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/", dashboard.Index)
	mux.HandleFunc("/trigger-search", sweeps.Trigger)
	mux.HandleFunc("/history", dashboard.History)
	mux.HandleFunc("/history/{date}", dashboard.HistoryDate)

	mux.HandleFunc("/api/search-status", sweeps.SearchStatus)
	mux.HandleFunc("/api/sweeps", sweeps.Start)
	mux.HandleFunc("/api/results", results.Latest)
	mux.HandleFunc("/api/results/{date}", results.ByDate)
	mux.HandleFunc("/api/history/{origin}/{destination}", results.History)
	mux.HandleFunc("/api/job-runs", results.JobRuns)
	mux.HandleFunc("/api/search-dates", results.SearchDates)
	mux.HandleFunc("/api/statistics", results.Statistics)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return loggingMiddleware(logger, mux)
}
