package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"flight-price-service/internal/domain"
	"flight-price-service/internal/platform/obs"

	"github.com/shopspring/decimal"
)

// DefaultQueryLimit applies when a history query passes limit <= 0.
const DefaultQueryLimit = 30

// SQLResultStore is the SQL-backed ResultStore. Queries are written with "?"
// placeholders and rebound to "$n" for Postgres.
type SQLResultStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLResultStore(db *sql.DB, dialect Dialect) *SQLResultStore {
	return &SQLResultStore{DB: db, Dialect: dialect}
}

func (s *SQLResultStore) q(query string) string {
	if s.Dialect != DialectPostgres {
		return query
	}
	return rebind(query)
}

// rebind rewrites "?" placeholders as "$1", "$2", ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveSweep replaces every result row and the run record for date in one
// transaction, so re-running a date never leaves a mix of two sweeps.
func (s *SQLResultStore) SaveSweep(ctx context.Context, date string, result *domain.SweepResult) (err error) {
	defer obs.Time(ctx, "results.SaveSweep")(&err)

	if s.DB == nil {
		return errors.New("save sweep: db is nil")
	}
	if result == nil {
		return errors.New("save sweep: result is nil")
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("save sweep: invalid date %q: %w", date, err)
	}

	createdAt := result.FinishedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	created := createdAt.UTC().Format(time.RFC3339)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save sweep: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM flight_results WHERE search_date = ?;`), date); err != nil {
		return fmt.Errorf("save sweep: clear results for %s: %w", date, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`
	INSERT INTO flight_results (
		search_date, origin, destination, status, price,
		amount, itinerary, currency, failure, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save sweep: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range result.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			date, o.Origin, o.Destination, string(o.Status), o.Price,
			o.Amount, o.Itinerary, result.Currency, string(o.Failure), created,
		); err != nil {
			return fmt.Errorf("save sweep: insert %s: %w", o.Pair().Label(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.q(`
	INSERT INTO job_runs (
		run_id, run_date, status, total_routes, successful_routes,
		min_price, currency, started_at, finished_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_date) DO UPDATE
	SET run_id = excluded.run_id,
		status = excluded.status,
		total_routes = excluded.total_routes,
		successful_routes = excluded.successful_routes,
		min_price = excluded.min_price,
		currency = excluded.currency,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at;
	`),
		result.RunID, date, domain.RunCompleted, len(result.Outcomes), result.SuccessCount(),
		result.MinPrice, result.Currency,
		result.StartedAt.UTC().Format(time.RFC3339), result.FinishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save sweep: upsert job run for %s: %w", date, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save sweep: commit tx: %w", err)
	}

	return nil
}

const resultColumns = `
	search_date, origin, destination, status, price,
	amount, itinerary, currency, failure, created_at
`

// Results of the most recent search date, destinations then origins.
func (s *SQLResultStore) LatestResults(ctx context.Context) (_ []domain.StoredResult, err error) {
	defer obs.Time(ctx, "results.LatestResults")(&err)

	return s.queryResults(ctx, "latest results", `
	SELECT`+resultColumns+`
	FROM flight_results
	WHERE search_date = (SELECT MAX(search_date) FROM flight_results)
	ORDER BY destination, origin;
	`)
}

func (s *SQLResultStore) ResultsByDate(ctx context.Context, date string) (_ []domain.StoredResult, err error) {
	defer obs.Time(ctx, "results.ResultsByDate")(&err)

	return s.queryResults(ctx, "results by date", `
	SELECT`+resultColumns+`
	FROM flight_results
	WHERE search_date = ?
	ORDER BY destination, origin;
	`, date)
}

func (s *SQLResultStore) queryResults(ctx context.Context, op, query string, args ...any) ([]domain.StoredResult, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("%s: db is nil", op)
	}

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query flight_results: %w", op, err)
	}
	defer rows.Close()

	out := []domain.StoredResult{}
	for rows.Next() {
		var (
			r         domain.StoredResult
			status    string
			failure   string
			createdAt string
		)
		if err := rows.Scan(
			&r.SearchDate, &r.Origin, &r.Destination, &status, &r.Price,
			&r.Amount, &r.Itinerary, &r.Currency, &failure, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		r.Status = domain.OutcomeStatus(status)
		r.Failure = domain.FailureKind(failure)
		r.CreatedAt = parseStoredTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return out, nil
}

// Priced observations of one route, newest first.
func (s *SQLResultStore) PriceHistory(
	ctx context.Context,
	origin string,
	destination string,
	limit int,
) (_ []domain.PricePoint, err error) {
	defer obs.Time(ctx, "results.PriceHistory")(&err)

	if s.DB == nil {
		return nil, errors.New("price history: db is nil")
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT search_date, price, amount, currency
	FROM flight_results
	WHERE origin = ?
		AND destination = ?
		AND status = ?
	ORDER BY search_date DESC
	LIMIT ?;
	`), origin, destination, string(domain.OutcomePriced), limit)
	if err != nil {
		return nil, fmt.Errorf("price history: query flight_results: %w", err)
	}
	defer rows.Close()

	out := []domain.PricePoint{}
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.SearchDate, &p.Price, &p.Amount, &p.Currency); err != nil {
			return nil, fmt.Errorf("price history: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("price history: row iteration: %w", err)
	}

	return out, nil
}

// Run records, newest date first.
func (s *SQLResultStore) JobRuns(ctx context.Context, limit int) (_ []domain.JobRun, err error) {
	defer obs.Time(ctx, "results.JobRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("job runs: db is nil")
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT run_id, run_date, status, total_routes, successful_routes,
		min_price, currency, started_at, finished_at
	FROM job_runs
	ORDER BY run_date DESC
	LIMIT ?;
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("job runs: query job_runs: %w", err)
	}
	defer rows.Close()

	out := []domain.JobRun{}
	for rows.Next() {
		var (
			j                 domain.JobRun
			started, finished string
		)
		if err := rows.Scan(
			&j.RunID, &j.RunDate, &j.Status, &j.TotalRoutes, &j.SuccessfulRoutes,
			&j.MinPrice, &j.Currency, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("job runs: scan row: %w", err)
		}
		j.StartedAt = parseStoredTime(started)
		j.FinishedAt = parseStoredTime(finished)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job runs: row iteration: %w", err)
	}

	return out, nil
}

// Distinct search dates with stored results, newest first.
func (s *SQLResultStore) SearchDates(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "results.SearchDates")(&err)

	if s.DB == nil {
		return nil, errors.New("search dates: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT DISTINCT search_date
	FROM flight_results
	ORDER BY search_date DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("search dates: query flight_results: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("search dates: scan row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search dates: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLResultStore) Statistics(ctx context.Context) (_ domain.Statistics, err error) {
	defer obs.Time(ctx, "results.Statistics")(&err)

	if s.DB == nil {
		return domain.Statistics{}, errors.New("statistics: db is nil")
	}

	var (
		st      domain.Statistics
		avgRate sql.NullFloat64
		best    decimal.NullDecimal
		checked sql.NullInt64
	)
	err = s.DB.QueryRowContext(ctx, `
	SELECT
		COUNT(*),
		AVG(CASE WHEN total_routes > 0
			THEN successful_routes * 100.0 / total_routes END),
		MIN(min_price),
		SUM(total_routes)
	FROM job_runs;
	`).Scan(&st.TotalRuns, &avgRate, &best, &checked)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("statistics: query job_runs: %w", err)
	}

	st.AvgSuccessRate = avgRate.Float64
	st.BestPriceEver = best
	st.TotalRoutesChecked = int(checked.Int64)

	return st, nil
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
