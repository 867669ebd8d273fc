package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// signalCmd computes today's valuation record
var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Compute today's valuation signal",
	Long: `Fetches the trailing price history and fundamentals, scores the
instrument and prints the daily valuation record.

Exits non-zero when the provider fails or the history is too short for
even a degraded score.

Example:
  go run ./cmd/valuator signal --symbol TSLA
  go run ./cmd/valuator signal --symbol TSLA --save`,
	RunE: runSignal,
}

var signalSave bool

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.Flags().BoolVar(&signalSave, "save", false, "persist the record to the database")
}

func runSignal(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if signalSave {
		if err := a.withDatabase(); err != nil {
			return err
		}
		if a.repo == nil {
			return fmt.Errorf("--save requires DATABASE_URL")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bars, err := a.provider.DailyBars(ctx, a.symbol, a.strategy.Data.LookbackDays)
	if err != nil {
		return fmt.Errorf("fetch bars for %s: %w", a.symbol, err)
	}

	fundamentals, err := a.provider.Fundamentals(ctx, a.symbol)
	if err != nil {
		a.log.WithError(err).Warn("Fundamentals unavailable, scoring without them")
	}

	rec, err := newScorer(a).Score(a.symbol, bars, fundamentals)
	if err != nil {
		return fmt.Errorf("score %s: %w", a.symbol, err)
	}

	printRecord(rec)

	if signalSave {
		if err := a.repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := a.repo.Save(ctx, rec); err != nil {
			return fmt.Errorf("persist record: %w", err)
		}
		fmt.Printf("\n✅ Record saved for %s\n", rec.Date.Format("2006-01-02"))
	}
	return nil
}
