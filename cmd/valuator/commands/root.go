package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	symbolFlag   string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "valuator",
	Short: "Daily valuation scoring and signal backtesting",
	Long: `Valuator - single-instrument valuation signal engine

Computes a daily composite valuation score from price statistics and
fundamental ratios, classifies it into a trading signal with a confidence
tier, and backtests the signal stream against historical prices.

Usage:
  go run ./cmd/valuator [command]

Examples:
  go run ./cmd/valuator signal --symbol TSLA
  go run ./cmd/valuator history --days 10
  go run ./cmd/valuator backtest --lookback 252
  go run ./cmd/valuator api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_CONFIG_PATH or built-in)")
	rootCmd.PersistentFlags().StringVar(&symbolFlag, "symbol", "", "instrument symbol (default: DEFAULT_SYMBOL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
