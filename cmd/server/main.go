package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "flight-price-service",
	Short:        "Flight price tracker",
	Long:         "Sweeps an origin x destination airport matrix for the cheapest fares, stores them per day, and serves a dashboard and JSON API over the history.",
	SilenceUsage: true,
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
