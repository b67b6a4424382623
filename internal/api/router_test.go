package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flight-price-service/internal/adapters/repositories"
	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/db"
	"flight-price-service/internal/ports"
	"flight-price-service/internal/services"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	status *services.Status
	calls  int
}

// StartSweep claims the slot but never finishes, like a sweep in flight.
func (f *fakeStarter) StartSweep() services.StartResult {
	f.calls++
	if !f.status.TryStart("run-test") {
		return services.StartResult{Reason: services.ErrAlreadyRunning.Error()}
	}
	return services.StartResult{Accepted: true, RunID: "run-test"}
}

type failingStore struct {
	ports.ResultStore
}

func (failingStore) LatestResults(context.Context) ([]domain.StoredResult, error) {
	return nil, errors.New("db locked")
}

func newTestStore(t *testing.T) *repositories.SQLResultStore {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn, repositories.DialectSQLite))
	return repositories.NewSQLResultStore(conn, repositories.DialectSQLite)
}

func priced(o, d string, amount int64) domain.RouteOutcome {
	return domain.RouteOutcome{
		Origin:      o,
		Destination: d,
		Status:      domain.OutcomePriced,
		Price:       decimal.NewFromInt(amount).StringFixed(2),
		Amount:      decimal.NewNullDecimal(decimal.NewFromInt(amount)),
		Itinerary:   "MU1",
	}
}

func seed(t *testing.T, store *repositories.SQLResultStore) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	for i, date := range []string{"2025-09-01", "2025-09-02"} {
		outcomes := []domain.RouteOutcome{
			{Origin: "SHA", Destination: "SHA", Status: domain.OutcomeSameAirport},
			priced("SHA", "DXB", int64(100-i*10)),
		}
		require.NoError(t, store.SaveSweep(ctx, date, &domain.SweepResult{
			RunID:      "run-" + date,
			Currency:   "CNY",
			Outcomes:   outcomes,
			MinPrice:   domain.MinAmount(outcomes),
			StartedAt:  start,
			FinishedAt: start.Add(time.Minute),
		}))
	}
}

type testServer struct {
	handler http.Handler
	status  *services.Status
	starter *fakeStarter
}

func newTestServer(t *testing.T, store ports.ResultStore) *testServer {
	t.Helper()
	status := services.NewStatus()
	starter := &fakeStarter{status: status}
	return &testServer{
		handler: NewRouter(RouterDeps{Runner: starter, Status: status, Store: store}),
		status:  status,
		starter: starter,
	}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, newTestStore(t))

	rec := s.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestStartSweep_AcceptedThenConflict(t *testing.T) {
	s := newTestServer(t, newTestStore(t))

	rec := s.do(http.MethodPost, "/api/sweeps")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"accepted":true,"run_id":"run-test"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/sweeps")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"accepted":false,"reason":"already running"}`, rec.Body.String())
}

func TestTriggerSearch_Redirects(t *testing.T) {
	s := newTestServer(t, newTestStore(t))

	rec := s.do(http.MethodPost, "/trigger-search")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?notice=started", rec.Header().Get("Location"))

	rec = s.do(http.MethodPost, "/trigger-search")
	assert.Equal(t, "/?notice=already-running", rec.Header().Get("Location"))
	assert.Equal(t, 2, s.starter.calls)
}

func TestSearchStatus(t *testing.T) {
	s := newTestServer(t, newTestStore(t))

	idle := decode[map[string]any](t, s.do(http.MethodGet, "/api/search-status"))
	assert.Equal(t, false, idle["running"])
	assert.Nil(t, idle["last_run"])
	assert.Nil(t, idle["error"])

	require.True(t, s.status.TryStart("run-9"))
	s.status.Publish(services.ProgressSnapshot{Total: 4, Completed: 2, Succeeded: 1, Failed: 1, CurrentRoute: "SHA → DXB", ETA: 90 * time.Second})

	running := decode[map[string]any](t, s.do(http.MethodGet, "/api/search-status"))
	assert.Equal(t, true, running["running"])
	assert.Equal(t, "run-9", running["run_id"])
	assert.EqualValues(t, 50, running["progress"])
	assert.Equal(t, "SHA → DXB", running["current_route"])
	assert.EqualValues(t, 90, running["eta_seconds"])

	s.status.Finish(errors.New("provider init failed"))
	failed := decode[map[string]any](t, s.do(http.MethodGet, "/api/search-status"))
	assert.Equal(t, false, failed["running"])
	assert.Equal(t, "provider init failed", failed["error"])
}

func TestResultsEndpoints(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	s := newTestServer(t, store)

	latest := decode[map[string]any](t, s.do(http.MethodGet, "/api/results"))
	assert.Equal(t, "2025-09-02", latest["search_date"])
	assert.Len(t, latest["results"], 2)

	byDate := s.do(http.MethodGet, "/api/results/2025-09-01")
	require.Equal(t, http.StatusOK, byDate.Code)
	rows := decode[map[string]any](t, byDate)["results"].([]any)
	require.Len(t, rows, 2)
	dxb := rows[0].(map[string]any)
	assert.Equal(t, "DXB", dxb["destination"])
	assert.Equal(t, "100.00", dxb["price"])

	bad := s.do(http.MethodGet, "/api/results/yesterday")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	history := decode[map[string]any](t, s.do(http.MethodGet, "/api/history/sha/dxb?limit=1"))
	assert.Equal(t, "SHA", history["origin"])
	points := history["history"].([]any)
	require.Len(t, points, 1)
	assert.Equal(t, "2025-09-02", points[0].(map[string]any)["search_date"])

	badLimit := s.do(http.MethodGet, "/api/history/SHA/DXB?limit=-3")
	assert.Equal(t, http.StatusBadRequest, badLimit.Code)

	runs := decode[map[string]any](t, s.do(http.MethodGet, "/api/job-runs"))["runs"].([]any)
	require.Len(t, runs, 2)
	first := runs[0].(map[string]any)
	assert.Equal(t, "2025-09-02", first["run_date"])
	assert.EqualValues(t, 2, first["total_routes"])
	assert.EqualValues(t, 50, first["success_rate"])

	dates := decode[map[string][]string](t, s.do(http.MethodGet, "/api/search-dates"))
	assert.Equal(t, []string{"2025-09-02", "2025-09-01"}, dates["dates"])

	stats := decode[map[string]any](t, s.do(http.MethodGet, "/api/statistics"))
	assert.EqualValues(t, 2, stats["total_runs"])
	assert.EqualValues(t, 4, stats["total_routes_checked"])
	assert.Equal(t, "90", stats["best_price_ever"])
}

func TestResults_StoreFailure(t *testing.T) {
	s := newTestServer(t, failingStore{})

	rec := s.do(http.MethodGet, "/api/results")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestDashboard(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	s := newTestServer(t, store)

	rec := s.do(http.MethodGet, "/?notice=already-running")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, doc.Find("#notice").Text(), "already in progress")
	assert.Equal(t, "/trigger-search", doc.Find("form").AttrOr("action", ""))
	assert.Equal(t, 2, doc.Find("#runs li").Length())
	assert.Contains(t, doc.Find("#runs li").First().Text(), "1/2 routes")
	assert.Contains(t, doc.Find("#latest").Text(), "90.00")
	assert.Contains(t, doc.Find("#latest").Text(), domain.SameAirportNote)
	assert.Equal(t, "/history/2025-09-02", doc.Find("#runs li a").First().AttrOr("href", ""))
	assert.Equal(t, "/history", doc.Find("nav a").AttrOr("href", ""))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/nope").Code)
}

func TestHistoryPage(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	s := newTestServer(t, store)

	rec := s.do(http.MethodGet, "/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, "2", doc.Find("#total-runs").Text())
	assert.Equal(t, "50.0%", doc.Find("#avg-success").Text())
	assert.Equal(t, "90", doc.Find("#best-price").Text())
	assert.Equal(t, "4", doc.Find("#routes-checked").Text())

	var dates []string
	doc.Find("#dates a").Each(func(_ int, a *goquery.Selection) {
		dates = append(dates, a.AttrOr("href", ""))
	})
	assert.Equal(t, []string{"/history/2025-09-02", "/history/2025-09-01"}, dates)

	rows := doc.Find("#runs tr")
	require.Equal(t, 3, rows.Length())
	first := rows.Eq(1).Text()
	assert.Contains(t, first, "2025-09-02")
	assert.Contains(t, first, "1/2")
	assert.Contains(t, first, "50.0%")
	assert.Contains(t, first, "CNY 90")
	assert.Contains(t, first, "1m0s")
}

func TestHistoryPage_Empty(t *testing.T) {
	s := newTestServer(t, newTestStore(t))

	rec := s.do(http.MethodGet, "/history")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "0", doc.Find("#total-runs").Text())
	assert.Equal(t, "N/A", doc.Find("#best-price").Text())
	assert.Contains(t, doc.Find("#dates").Text(), "No searches recorded")
}

func TestHistoryDatePage(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	s := newTestServer(t, store)

	rec := s.do(http.MethodGet, "/history/2025-09-01")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, doc.Find("h1").Text(), "2025-09-01")
	run := doc.Find("#run").Text()
	assert.Contains(t, run, "run-2025-09-01")
	assert.Contains(t, run, "1/2 routes")
	assert.Contains(t, run, "CNY 100")

	grid := doc.Find("#results")
	assert.Contains(t, grid.Text(), "100.00")
	assert.Contains(t, grid.Text(), domain.SameAirportNote)
	assert.NotContains(t, grid.Text(), "90.00")
}

func TestHistoryDatePage_UnknownAndInvalidDate(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	s := newTestServer(t, store)

	rec := s.do(http.MethodGet, "/history/2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#no-run").Length())
	assert.Equal(t, 1, doc.Find("#no-results").Length())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/history/last-week").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodPost, "/history").Code)
}
