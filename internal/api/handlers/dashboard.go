package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/ports"
	"flight-price-service/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	noticeStarted        = "started"
	noticeAlreadyRunning = "already-running"

	dashboardRuns = 10
)

var notices = map[string]string{
	noticeStarted:        "Flight search started. This page refreshes while it runs.",
	noticeAlreadyRunning: "Search already in progress! Please wait...",
}

const gridTemplate = `{{define "grid"}}<table style="border-collapse:collapse;">
      <tr><th>Destination</th>{{range .Origins}}<th>{{.}}</th>{{end}}</tr>
      {{range .Rows}}<tr><td>{{.Destination}}</td>{{range .Cells}}<td>{{.Price}}<br><small>{{.Itinerary}}</small></td>{{end}}</tr>
      {{end}}
    </table>{{end}}`

const dashboardTemplate = `{{define "dashboard"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Flight Price Tracker</title>
  {{if .Status.Running}}<meta http-equiv="refresh" content="5">{{end}}
</head>
<body style="font-family:Arial,Helvetica,sans-serif;">
  <h1 style="color:#004472;">Flight Price Tracker</h1>
  <nav><a href="/history">History</a></nav>
  {{with .Notice}}<p id="notice" style="background:#fff3cd;padding:8px;">{{.}}</p>{{end}}

  <section id="status">
    {{if .Status.Running}}
    <p><strong>Search running:</strong> {{.Status.Progress}}% ({{.Status.Completed}}/{{.Status.Total}})</p>
    <p id="current-route">{{.Status.CurrentRoute}}</p>
    {{else}}
    <p><strong>Idle.</strong> Last run: {{if .LastRun}}{{.LastRun}}{{else}}never{{end}}</p>
    {{end}}
    {{with .Status.Error}}<p id="last-error" style="color:#b00020;">Last run failed: {{.}}</p>{{end}}
    <form method="post" action="/trigger-search">
      <button type="submit"{{if .Status.Running}} disabled{{end}}>Search now</button>
    </form>
  </section>

  <section>
    <h2>Latest results{{with .LatestDate}} ({{.}}){{end}}</h2>
    {{if .Rows}}<div id="latest">{{template "grid" .}}</div>{{else}}<p>No results yet.</p>{{end}}
  </section>

  <section>
    <h2>Recent runs</h2>
    <ul id="runs">
      {{range .Runs}}<li><a href="/history/{{.Date}}">{{.Date}}</a>: {{.Succeeded}}/{{.Total}} routes{{with .MinPrice}}, best {{.}}{{end}}</li>
      {{else}}<li>No runs recorded.</li>
      {{end}}
    </ul>
  </section>
</body>
</html>
{{end}}`

const historyTemplate = `{{define "history"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Search History - Flight Price Tracker</title>
</head>
<body style="font-family:Arial,Helvetica,sans-serif;">
  <h1 style="color:#004472;">Search History</h1>
  <nav><a href="/">Dashboard</a></nav>

  <section id="statistics">
    <h2>Statistics</h2>
    <ul>
      <li>Total runs: <span id="total-runs">{{.Stats.TotalRuns}}</span></li>
      <li>Average success rate: <span id="avg-success">{{printf "%.1f" .Stats.AvgSuccessRate}}%</span></li>
      <li>Best price ever: <span id="best-price">{{if .BestPrice}}{{.BestPrice}}{{else}}N/A{{end}}</span></li>
      <li>Routes checked: <span id="routes-checked">{{.Stats.TotalRoutesChecked}}</span></li>
    </ul>
  </section>

  <section>
    <h2>Search dates</h2>
    <ul id="dates">
      {{range .Dates}}<li><a href="/history/{{.}}">{{.}}</a></li>
      {{else}}<li>No searches recorded.</li>
      {{end}}
    </ul>
  </section>

  <section>
    <h2>All runs</h2>
    {{if .Runs}}
    <table id="runs" style="border-collapse:collapse;">
      <tr><th>Date</th><th>Status</th><th>Routes</th><th>Success rate</th><th>Best price</th><th>Started</th><th>Duration</th></tr>
      {{range .Runs}}<tr>
        <td><a href="/history/{{.Date}}">{{.Date}}</a></td>
        <td>{{.Status}}</td>
        <td>{{.Succeeded}}/{{.Total}}</td>
        <td>{{printf "%.1f" .SuccessRate}}%</td>
        <td>{{if .MinPrice}}{{.MinPrice}}{{else}}N/A{{end}}</td>
        <td>{{.Started}}</td>
        <td>{{.Duration}}</td>
      </tr>
      {{end}}
    </table>
    {{else}}
    <p>No runs recorded.</p>
    {{end}}
  </section>
</body>
</html>
{{end}}`

const historyDateTemplate = `{{define "history-date"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Date}} - Flight Price Tracker</title>
</head>
<body style="font-family:Arial,Helvetica,sans-serif;">
  <h1 style="color:#004472;">Search results for {{.Date}}</h1>
  <nav><a href="/">Dashboard</a> | <a href="/history">History</a></nav>

  {{with .Run}}
  <section id="run">
    <p>Run {{.RunID}}: {{.Status}}, {{.Succeeded}}/{{.Total}} routes ({{printf "%.1f" .SuccessRate}}%){{with .MinPrice}}, best {{.}}{{end}}</p>
    <p>Started {{.Started}}, took {{.Duration}}</p>
  </section>
  {{else}}
  <p id="no-run">No run recorded for this date.</p>
  {{end}}

  {{if .Rows}}<div id="results">{{template "grid" .}}</div>{{else}}<p id="no-results">No results for this date.</p>{{end}}
</body>
</html>
{{end}}`

var pageTmpl = template.Must(template.New("pages").Parse(gridTemplate + dashboardTemplate + historyTemplate + historyDateTemplate))

type dashboardCell struct {
	Price     string
	Itinerary string
}

type dashboardRow struct {
	Destination string
	Cells       []dashboardCell
}

type dashboardRun struct {
	RunID       string
	Date        string
	Status      string
	Succeeded   int
	Total       int
	SuccessRate float64
	MinPrice    string
	Started     string
	Duration    string
}

func toDashboardRun(j domain.JobRun) dashboardRun {
	run := dashboardRun{
		RunID:       j.RunID,
		Date:        j.RunDate,
		Status:      j.Status,
		Succeeded:   j.SuccessfulRoutes,
		Total:       j.TotalRoutes,
		SuccessRate: j.SuccessRate(),
		MinPrice:    formatFare(j.Currency, j.MinPrice),
	}
	if !j.StartedAt.IsZero() {
		run.Started = j.StartedAt.Local().Format(timestampLayout)
		if j.FinishedAt.After(j.StartedAt) {
			run.Duration = j.FinishedAt.Sub(j.StartedAt).Round(time.Second).String()
		}
	}
	return run
}

func formatFare(currency string, amount decimal.NullDecimal) string {
	if !amount.Valid {
		return ""
	}
	fare := humanize.Comma(amount.Decimal.Round(0).IntPart())
	if currency == "" {
		return fare
	}
	return currency + " " + fare
}

type dashboardData struct {
	Status     services.StatusView
	Notice     string
	LastRun    string
	LatestDate string
	Origins    []string
	Rows       []dashboardRow
	Runs       []dashboardRun
}

// DashboardHandler renders the HTML overview page.
type DashboardHandler struct {
	Status StatusReader
	Store  ports.ResultStore
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	view := h.Status.View()
	data := dashboardData{
		Status: view,
		Notice: notices[r.URL.Query().Get("notice")],
	}
	if !view.LastRun.IsZero() {
		data.LastRun = view.LastRun.Format(timestampLayout) + " (" + humanize.Time(view.LastRun) + ")"
	}

	latest, err := h.Store.LatestResults(r.Context())
	if err != nil {
		internalError(w, r, "dashboard latest results", err)
		return
	}
	if len(latest) > 0 {
		data.LatestDate = latest[0].SearchDate
		data.Origins, data.Rows = resultGrid(latest)
	}

	runs, err := h.Store.JobRuns(r.Context(), dashboardRuns)
	if err != nil {
		internalError(w, r, "dashboard job runs", err)
		return
	}
	for _, j := range runs {
		data.Runs = append(data.Runs, toDashboardRun(j))
	}

	renderPage(w, r, "dashboard", data)
}

type historyData struct {
	Stats     domain.Statistics
	BestPrice string
	Dates     []string
	Runs      []dashboardRun
}

// History lists every recorded run, the search dates and the aggregate statistics.
func (h *DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	runs, err := h.Store.JobRuns(r.Context(), maxRunsLimit)
	if err != nil {
		internalError(w, r, "history job runs", err)
		return
	}
	dates, err := h.Store.SearchDates(r.Context())
	if err != nil {
		internalError(w, r, "history search dates", err)
		return
	}
	stats, err := h.Store.Statistics(r.Context())
	if err != nil {
		internalError(w, r, "history statistics", err)
		return
	}

	data := historyData{
		Stats:     stats,
		BestPrice: formatFare("", stats.BestPriceEver),
		Dates:     dates,
	}
	for _, j := range runs {
		data.Runs = append(data.Runs, toDashboardRun(j))
	}

	renderPage(w, r, "history", data)
}

type historyDateData struct {
	Date    string
	Run     *dashboardRun
	Origins []string
	Rows    []dashboardRow
}

// HistoryDate shows one search date's result grid and its run record.
func (h *DashboardHandler) HistoryDate(w http.ResponseWriter, r *http.Request) {
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
		internalError(w, r, "history results by date", err)
		return
	}
	runs, err := h.Store.JobRuns(r.Context(), maxRunsLimit)
	if err != nil {
		internalError(w, r, "history job runs", err)
		return
	}

	data := historyDateData{Date: date}
	for _, j := range runs {
		if j.RunDate == date {
			run := toDashboardRun(j)
			data.Run = &run
			break
		}
	}
	if len(results) > 0 {
		data.Origins, data.Rows = resultGrid(results)
	}

	renderPage(w, r, "history-date", data)
}

func renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		internalError(w, r, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// resultGrid pivots stored rows into destinations x origins, keeping the
// order in which codes first appear.
func resultGrid(results []domain.StoredResult) ([]string, []dashboardRow) {
	var origins, destinations []string
	seenO := map[string]bool{}
	seenD := map[string]bool{}
	byPair := make(map[domain.RoutePair]domain.RouteOutcome, len(results))
	for _, s := range results {
		if !seenO[s.Origin] {
			seenO[s.Origin] = true
			origins = append(origins, s.Origin)
		}
		if !seenD[s.Destination] {
			seenD[s.Destination] = true
			destinations = append(destinations, s.Destination)
		}
		byPair[domain.RoutePair{Origin: s.Origin, Destination: s.Destination}] = s.Outcome()
	}

	rows := make([]dashboardRow, 0, len(destinations))
	for _, d := range destinations {
		row := dashboardRow{Destination: d}
		for _, o := range origins {
			out, ok := byPair[domain.RoutePair{Origin: o, Destination: d}]
			if !ok {
				out = domain.RouteOutcome{Status: domain.OutcomeUnavailable}
			}
			row.Cells = append(row.Cells, dashboardCell{Price: out.DisplayPrice(), Itinerary: out.DisplayItinerary()})
		}
		rows = append(rows, row)
	}
	return origins, rows
}
