package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-price-service/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one sweep now, persist it, and send the report",
	RunE:  runSweepOnce,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweepOnce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.runner.RunSweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	out := cmd.OutOrStdout()
	total := len(res.Outcomes)
	fmt.Fprintf(out, "Run %s finished in %s\n", res.RunID, res.FinishedAt.Sub(res.StartedAt).Round(time.Second))
	fmt.Fprintf(out, "Success rate: %d/%d routes\n", res.SuccessCount(), total)
	if res.MinPrice.Valid {
		fmt.Fprintf(out, "Best price found: %s %s\n", res.Currency, humanize.Comma(res.MinPrice.Decimal.Round(0).IntPart()))
	} else {
		fmt.Fprintln(out, "No numeric fares were returned.")
	}
	for _, o := range res.Outcomes {
		if o.Status == domain.OutcomeSameAirport {
			continue
		}
		fmt.Fprintf(out, "  %-12s %12s  %s\n", o.Pair().Label(), o.DisplayPrice(), o.DisplayItinerary())
	}
	return nil
}
