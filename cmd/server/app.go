package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"flight-price-service/internal/adapters/pricing"
	"flight-price-service/internal/adapters/report"
	"flight-price-service/internal/adapters/repositories"
	"flight-price-service/internal/config"
	"flight-price-service/internal/platform/db"
	"flight-price-service/internal/platform/obs"
	"flight-price-service/internal/ports"
	"flight-price-service/internal/services"
)

// app is the composition root shared by every subcommand.
// It wires concrete adapters (SQL store, Amadeus, SMTP) behind ports.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	store  *repositories.SQLResultStore
	status *services.Status
	runner *services.Runner
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := obs.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	conn, dialect, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(conn, dialect); err != nil {
		_ = conn.Close()
		return nil, err
	}
	store := repositories.NewSQLResultStore(conn, dialect)

	matrix, err := cfg.Search.Matrix()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("search config: %w", err)
	}
	trip, err := cfg.Search.Trip()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("search config: %w", err)
	}

	amadeus := cfg.Amadeus
	newProvider := func() (ports.PriceProvider, error) {
		return pricing.NewAmadeusProvider(amadeus.ClientID, amadeus.ClientSecret, amadeus.BaseURL, amadeus.Timeout)
	}

	status := services.NewStatus()
	runner := &services.Runner{
		Status:      status,
		NewProvider: newProvider,
		Store:       store,
		Reports:     report.NewMailer(cfg.Email, logger),
		Matrix:      matrix,
		Trip:        trip,
		Pacing:      cfg.Pacing,
		Logger:      logger,
		BaseContext: ctx,
	}

	logger.Info("app ready",
		"store", dialect.String(),
		"routes", matrix.Size(),
		"cabin", string(trip.Cabin),
		"currency", trip.Currency,
		"email", cfg.Email.Enabled,
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     conn,
		store:  store,
		status: status,
		runner: runner,
	}, nil
}

// openStore prefers Postgres when DATABASE_URL is set, else the SQLite file.
func openStore(cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, 0, err
		}
		return conn, repositories.DialectPostgres, nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, 0, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}
	conn, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, 0, err
	}
	return conn, repositories.DialectSQLite, nil
}

func (a *app) Close() {
	a.runner.Wait()
	if err := a.db.Close(); err != nil {
		a.logger.Error("close database", "err", err)
	}
}
