package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuator/internal/backtest"
)

// backtestCmd replays the scoring pipeline over history and simulates trades
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a historical backtest",
	Long: `Replays the daily scoring pipeline over the trailing price history,
simulates the signal-following strategy bar by bar and prints the trade
list and performance metrics.

Example:
  go run ./cmd/valuator backtest --symbol TSLA --lookback 252`,
	RunE: runBacktest,
}

var backtestLookback int

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().IntVar(&backtestLookback, "lookback", 0, "trading days to replay (default: strategy lookback)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	lookback := backtestLookback
	if lookback <= 0 {
		lookback = a.strategy.Data.LookbackDays
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bars, err := a.provider.DailyBars(ctx, a.symbol, lookback)
	if err != nil {
		return fmt.Errorf("fetch bars for %s: %w", a.symbol, err)
	}
	fmt.Printf("📊 %d bars loaded for %s (%s → %s)\n",
		len(bars), a.symbol,
		bars[0].Date.Format("2006-01-02"),
		bars[len(bars)-1].Date.Format("2006-01-02"))

	records, err := newScorer(a).Replay(a.symbol, bars)
	if err != nil {
		return fmt.Errorf("replay scoring: %w", err)
	}
	fmt.Printf("📊 %d daily records scored\n", len(records))

	result, err := backtest.New(a.strategy, a.log).Run(a.symbol, records, bars)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	printBacktestReport(result)
	return nil
}
