package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-price-service/internal/api"
	"flight-price-service/internal/config"
	"flight-price-service/internal/services"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort       int
	serveNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard/API server and the daily sweep schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "Disable the daily sweep; sweeps run only when triggered")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	schedule, err := dailySchedule(a.cfg.ScheduleAt)
	if err != nil {
		return err
	}

	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	router := api.NewRouter(api.RouterDeps{
		Runner: a.runner,
		Status: a.status,
		Store:  a.store,
		Logger: a.logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shut down: %w", err)
		}
		return nil
	})

	if !serveNoSchedule {
		g.Go(func() error {
			a.logger.Info("daily sweep scheduled", "at", schedule.String(), "next", schedule.Next(time.Now()).Format(time.RFC3339))
			err := schedule.Run(gCtx, func() {
				res := a.runner.StartSweep()
				if !res.Accepted {
					a.logger.Warn("scheduled sweep skipped", "reason", res.Reason)
					return
				}
				a.logger.Info("scheduled sweep started", "run_id", res.RunID)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

func dailySchedule(at string) (services.DailySchedule, error) {
	hour, minute, err := config.ParseClock(at)
	if err != nil {
		return services.DailySchedule{}, fmt.Errorf("SCHEDULE_AT: %w", err)
	}
	return services.NewDailySchedule(hour, minute)
}
