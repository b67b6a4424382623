package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsRuns int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate statistics and recent sweep runs",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRuns, "runs", 10, "Number of recent runs to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.store.Statistics(cmd.Context())
	if err != nil {
		return err
	}
	runs, err := a.store.JobRuns(cmd.Context(), statsRuns)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total runs:           %s\n", humanize.Comma(int64(st.TotalRuns)))
	fmt.Fprintf(out, "Routes checked:       %s\n", humanize.Comma(int64(st.TotalRoutesChecked)))
	fmt.Fprintf(out, "Average success rate: %.1f%%\n", st.AvgSuccessRate)
	if st.BestPriceEver.Valid {
		fmt.Fprintf(out, "Best price ever:      %s\n", humanize.Comma(st.BestPriceEver.Decimal.Round(0).IntPart()))
	}

	if len(runs) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nRecent runs:")
	for _, j := range runs {
		best := "-"
		if j.MinPrice.Valid {
			best = j.Currency + " " + humanize.Comma(j.MinPrice.Decimal.Round(0).IntPart())
		}
		fmt.Fprintf(out, "  %s  %d/%d routes  best %s  (%s)\n",
			j.RunDate, j.SuccessfulRoutes, j.TotalRoutes, best, humanize.Time(j.FinishedAt))
	}
	return nil
}
