package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// historyCmd lists stored daily records and their signal transitions
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the stored signal history",
	Long: `Loads the persisted daily records for the symbol and prints the
recent signal timeline, marking the days the signal changed.

Requires DATABASE_URL; records are written by 'signal --save' or the
scheduler.

Example:
  go run ./cmd/valuator history --symbol TSLA --days 30`,
	RunE: runHistory,
}

var historyDays int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "number of trailing records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.withDatabase(); err != nil {
		return err
	}
	if a.repo == nil {
		return fmt.Errorf("history requires DATABASE_URL")
	}
	if historyDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", historyDays)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hist, err := a.repo.Load(ctx, a.symbol, historyDays)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if hist.Len() == 0 {
		fmt.Printf("No records stored for %s\n", a.symbol)
		return nil
	}

	printHeader(fmt.Sprintf("🗓  %s — last %d records", a.symbol, hist.Len()))
	fmt.Printf("%-12s %8s  %-13s %-10s %10s %10s\n",
		"Date", "Score", "Signal", "Conf", "Price", "Fair")
	for i := 0; i < hist.Len(); i++ {
		rec, _ := hist.At(i)
		marker := " "
		if hist.TransitionAt(rec.Date) {
			marker = "*"
		}
		fmt.Printf("%-12s %+8.2f  %-13s %-10s %10.2f %10.2f %s\n",
			rec.Date.Format("2006-01-02"), rec.CompositeScore,
			rec.Signal, rec.Confidence,
			rec.CurrentPrice, rec.FairValue, marker)
	}

	transitions := hist.Transitions()
	if len(transitions) > 0 {
		fmt.Printf("\nSignal transitions (%d)\n", len(transitions))
		for _, tr := range transitions {
			fmt.Printf("  %s  %s → %s\n",
				tr.Date.Format("2006-01-02"), tr.From, tr.To)
		}
	}
	return nil
}
