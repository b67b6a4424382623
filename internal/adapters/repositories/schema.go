package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder style and DDL for a SQL backend.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS flight_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_date TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		status TEXT NOT NULL,
		price TEXT NOT NULL DEFAULT '',
		amount NUMERIC,
		itinerary TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (search_date, origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS job_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		run_date TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		total_routes INTEGER NOT NULL,
		successful_routes INTEGER NOT NULL,
		min_price NUMERIC,
		currency TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_flight_results_route_date
	ON flight_results(origin, destination, search_date);
	`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS flight_results (
		id BIGSERIAL PRIMARY KEY,
		search_date TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		status TEXT NOT NULL,
		price TEXT NOT NULL DEFAULT '',
		amount NUMERIC(14, 2),
		itinerary TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL,
		failure TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (search_date, origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS job_runs (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		run_date TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		total_routes INTEGER NOT NULL,
		successful_routes INTEGER NOT NULL,
		min_price NUMERIC(14, 2),
		currency TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_flight_results_route_date
	ON flight_results(origin, destination, search_date);
	`,
}

// Initialize the result store schema for the given dialect.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	statements := sqliteSchema
	if dialect == DialectPostgres {
		statements = postgresSchema
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec %s statement #%d: %w", dialect, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
