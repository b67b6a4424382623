package handlers

import (
	"net/http"
	"strings"
	"time"

	"flight-price-service/internal/api/dto"
	"flight-price-service/internal/domain"
	"flight-price-service/internal/ports"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 30
	defaultRunsLimit    = 30
	maxRunsLimit        = 365
)

// ResultsHandler exposes read-only views over persisted sweeps.
type ResultsHandler struct {
	Store ports.ResultStore
}

func (h *ResultsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	results, err := h.Store.LatestResults(r.Context())
	if err != nil {
		internalError(w, r, "latest results", err)
		return
	}

	res := dto.ListResultsResponse{Results: toResultResponses(results)}
	if len(results) > 0 {
		res.SearchDate = results[0].SearchDate
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ResultsHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	date := r.PathValue("date")
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	results, err := h.Store.ResultsByDate(r.Context(), date)
	if err != nil {
		internalError(w, r, "results by date", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListResultsResponse{
		SearchDate: date,
		Results:    toResultResponses(results),
	})
}

func (h *ResultsHandler) History(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	origin := strings.ToUpper(strings.TrimSpace(r.PathValue("origin")))
	destination := strings.ToUpper(strings.TrimSpace(r.PathValue("destination")))
	if origin == "" || destination == "" {
		writeError(w, r, http.StatusBadRequest, "origin and destination are required")
		return
	}

	limit, ok := queryLimit(r, defaultHistoryLimit, maxHistoryLimit)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	points, err := h.Store.PriceHistory(r.Context(), origin, destination, limit)
	if err != nil {
		internalError(w, r, "price history", err)
		return
	}

	res := dto.PriceHistoryResponse{
		Origin:      origin,
		Destination: destination,
		History:     make([]dto.PricePointResponse, 0, len(points)),
	}
	for _, p := range points {
		res.History = append(res.History, dto.PricePointResponse{
			SearchDate: p.SearchDate,
			Price:      p.Price,
			Amount:     p.Amount,
			Currency:   p.Currency,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ResultsHandler) JobRuns(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit, ok := queryLimit(r, defaultRunsLimit, maxRunsLimit)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	runs, err := h.Store.JobRuns(r.Context(), limit)
	if err != nil {
		internalError(w, r, "job runs", err)
		return
	}

	res := dto.ListJobRunsResponse{Runs: make([]dto.JobRunResponse, 0, len(runs))}
	for _, j := range runs {
		res.Runs = append(res.Runs, dto.JobRunResponse{
			RunID:            j.RunID,
			RunDate:          j.RunDate,
			Status:           j.Status,
			TotalRoutes:      j.TotalRoutes,
			SuccessfulRoutes: j.SuccessfulRoutes,
			SuccessRate:      j.SuccessRate(),
			MinPrice:         j.MinPrice,
			Currency:         j.Currency,
			StartedAt:        j.StartedAt,
			FinishedAt:       j.FinishedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ResultsHandler) SearchDates(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	dates, err := h.Store.SearchDates(r.Context())
	if err != nil {
		internalError(w, r, "search dates", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SearchDatesResponse{Dates: dates})
}

func (h *ResultsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	st, err := h.Store.Statistics(r.Context())
	if err != nil {
		internalError(w, r, "statistics", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.StatisticsResponse{
		TotalRuns:          st.TotalRuns,
		AvgSuccessRate:     st.AvgSuccessRate,
		BestPriceEver:      st.BestPriceEver,
		TotalRoutesChecked: st.TotalRoutesChecked,
	})
}

func toResultResponses(results []domain.StoredResult) []dto.ResultResponse {
	out := make([]dto.ResultResponse, 0, len(results))
	for _, s := range results {
		out = append(out, dto.ResultResponse{
			SearchDate:  s.SearchDate,
			Origin:      s.Origin,
			Destination: s.Destination,
			Status:      string(s.Status),
			Price:       s.Price,
			Amount:      s.Amount,
			Itinerary:   s.Itinerary,
			Currency:    s.Currency,
			Failure:     string(s.Failure),
			CreatedAt:   s.CreatedAt,
		})
	}
	return out
}
