package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/valuator/internal/backtest"
	"github.com/wonny/valuator/internal/contracts"
)

// formatValue renders an optional indicator value, "n/a" when undefined
func formatValue(v contracts.Value, format string) string {
	if !v.Defined {
		return "n/a"
	}
	return fmt.Sprintf(format, v.Val)
}

// formatMetric renders a backtest metric; NaN means the statistic does
// not exist for this run (no trades, zero-variance returns).
func formatMetric(v float64, format string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf(format, v)
}

func printHeader(title string) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len(title)))
}

// printRecord renders a daily valuation record
func printRecord(rec *contracts.ValuationRecord) {
	printHeader(fmt.Sprintf("📈 %s — %s", rec.Symbol, rec.Date.Format("2006-01-02")))

	fmt.Printf("%-18s %s (%s)\n", "Signal:", rec.Signal, rec.Confidence)
	fmt.Printf("%-18s %+.2f\n", "Composite Score:", rec.CompositeScore)
	fmt.Printf("%-18s %.2f\n", "Current Price:", rec.CurrentPrice)
	fmt.Printf("%-18s %.2f (%+.2f%%)\n", "Fair Value:", rec.FairValue, rec.PercentDeviation)

	fmt.Println("\nCategory Scores")
	fmt.Printf("  %-16s %s\n", "Statistical:", formatValue(rec.Categories.Statistical, "%+.2f"))
	fmt.Printf("  %-16s %s\n", "Relative:", formatValue(rec.Categories.Relative, "%+.2f"))
	fmt.Printf("  %-16s %s\n", "Momentum:", formatValue(rec.Categories.Momentum, "%+.2f"))
	fmt.Printf("  %-16s %s\n", "Fundamental:", formatValue(rec.Categories.Fundamental, "%+.2f"))

	fmt.Println("\nKey Indicators")
	fmt.Printf("  %-16s %s\n", "RSI(14):", formatValue(rec.Indicators.RSI14, "%.2f"))
	fmt.Printf("  %-16s %s\n", "MACD Hist:", formatValue(rec.Indicators.MACDHistogram, "%+.4f"))
	fmt.Printf("  %-16s %s / %s / %s\n", "Bollinger:",
		formatValue(rec.Indicators.BollingerLower, "%.2f"),
		formatValue(rec.Indicators.BollingerMid, "%.2f"),
		formatValue(rec.Indicators.BollingerUpper, "%.2f"))
	fmt.Printf("  %-16s %s\n", "Z-Score:", formatValue(rec.Indicators.ZScore, "%+.2f"))
	fmt.Printf("  %-16s %s\n", "Percentile:", formatValue(rec.Indicators.PercentileRank, "%.1f"))
	fmt.Printf("  %-16s %s\n", "52W Range:", formatValue(rec.Indicators.RangePos52W, "%.1f"))
	fmt.Printf("  %-16s %s\n", "ATR%:", formatValue(rec.Indicators.ATRPercent, "%.2f"))
	fmt.Printf("  %-16s %s\n", "ADX(14):", formatValue(rec.Indicators.ADX14, "%.2f"))

	if len(rec.SupportLevels) > 0 {
		fmt.Printf("\n%-18s %s\n", "Support:", joinLevels(rec.SupportLevels))
	}
	if len(rec.ResistanceLevels) > 0 {
		fmt.Printf("%-18s %s\n", "Resistance:", joinLevels(rec.ResistanceLevels))
	}
	if len(rec.QualityFlags) > 0 {
		fmt.Printf("\n⚠️  Quality flags: %s\n", strings.Join(rec.QualityFlags, ", "))
	}
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%.2f", l)
	}
	return strings.Join(parts, "  ")
}

// printBacktestReport renders the trade list and summary metrics
func printBacktestReport(res *backtest.Result) {
	printHeader(fmt.Sprintf("🧪 Backtest — %s", res.Symbol))

	if len(res.Trades) == 0 {
		fmt.Println("No trades taken.")
	} else {
		fmt.Printf("%-5s %-12s %10s %-12s %10s %9s %6s  %s\n",
			"Side", "Entry", "Price", "Exit", "Price", "PnL%", "Size", "Reason")
		for _, t := range res.Trades {
			fmt.Printf("%-5s %-12s %10.2f %-12s %10.2f %+8.2f%% %6.2f  %s\n",
				t.Side,
				t.EntryDate.Format("2006-01-02"), t.EntryPrice,
				t.ExitDate.Format("2006-01-02"), t.ExitPrice,
				t.PnlPct, t.SizeFraction, t.ExitReason)
		}
	}

	m := res.Metrics
	fmt.Println("\nMetrics")
	fmt.Printf("  %-18s %s%%\n", "Total Return:", formatMetric(m.TotalReturnPct, "%+.2f"))
	fmt.Printf("  %-18s %s%%\n", "Buy & Hold:", formatMetric(m.BuyHoldReturnPct, "%+.2f"))
	fmt.Printf("  %-18s %s\n", "Sharpe:", formatMetric(m.SharpeRatio, "%.2f"))
	fmt.Printf("  %-18s %s\n", "Sortino:", formatMetric(m.SortinoRatio, "%.2f"))
	fmt.Printf("  %-18s %s%%\n", "Max Drawdown:", formatMetric(m.MaxDrawdownPct, "%.2f"))
	fmt.Printf("  %-18s %d\n", "Trades:", m.TradeCount)
	fmt.Printf("  %-18s %s%%\n", "Win Rate:", formatMetric(m.WinRate, "%.1f"))
	fmt.Printf("  %-18s %s\n", "Profit Factor:", formatMetric(m.ProfitFactor, "%.2f"))
	fmt.Printf("  %-18s %s%%\n", "Avg Win:", formatMetric(m.AvgWinPct, "%+.2f"))
	fmt.Printf("  %-18s %s%%\n", "Avg Loss:", formatMetric(m.AvgLossPct, "%+.2f"))
	fmt.Printf("  %-18s %s days\n", "Avg Holding:", formatMetric(m.AvgHoldingDays, "%.1f"))

	if len(res.Equity) > 0 {
		final := res.Equity[len(res.Equity)-1]
		fmt.Printf("\nFinal equity: %.4f at %s\n", final.Equity, final.Date.Format("2006-01-02"))
	}
}
