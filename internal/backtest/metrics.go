package backtest

import (
	"encoding/json"
	"math"

	"github.com/wonny/valuator/internal/contracts"
)

const tradingDaysPerYear = 252

// Metrics are the aggregate backtest statistics. Ratios that are undefined
// for the run (no trades, zero-variance equity curve) stay NaN and are
// reported as such, never coerced to 0.
type Metrics struct {
	TotalReturnPct   float64 `json:"total_return_pct"`
	BuyHoldReturnPct float64 `json:"buy_hold_return_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	TradeCount       int     `json:"trade_count"`
	AvgWinPct        float64 `json:"avg_win_pct"`
	AvgLossPct       float64 `json:"avg_loss_pct"`
	AvgHoldingDays   float64 `json:"avg_holding_days"`
}

// metricsJSON mirrors Metrics with NaN/Inf encoded as null so a Result
// survives JSON round trips.
type metricsJSON struct {
	TotalReturnPct   contracts.Value `json:"total_return_pct"`
	BuyHoldReturnPct contracts.Value `json:"buy_hold_return_pct"`
	SharpeRatio      contracts.Value `json:"sharpe_ratio"`
	SortinoRatio     contracts.Value `json:"sortino_ratio"`
	MaxDrawdownPct   contracts.Value `json:"max_drawdown_pct"`
	WinRate          contracts.Value `json:"win_rate"`
	ProfitFactor     contracts.Value `json:"profit_factor"`
	TradeCount       int             `json:"trade_count"`
	AvgWinPct        contracts.Value `json:"avg_win_pct"`
	AvgLossPct       contracts.Value `json:"avg_loss_pct"`
	AvgHoldingDays   contracts.Value `json:"avg_holding_days"`
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		TotalReturnPct:   contracts.Defined(m.TotalReturnPct),
		BuyHoldReturnPct: contracts.Defined(m.BuyHoldReturnPct),
		SharpeRatio:      contracts.Defined(m.SharpeRatio),
		SortinoRatio:     contracts.Defined(m.SortinoRatio),
		MaxDrawdownPct:   contracts.Defined(m.MaxDrawdownPct),
		WinRate:          contracts.Defined(m.WinRate),
		ProfitFactor:     contracts.Defined(m.ProfitFactor),
		TradeCount:       m.TradeCount,
		AvgWinPct:        contracts.Defined(m.AvgWinPct),
		AvgLossPct:       contracts.Defined(m.AvgLossPct),
		AvgHoldingDays:   contracts.Defined(m.AvgHoldingDays),
	})
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var mj metricsJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	*m = Metrics{
		TotalReturnPct:   mj.TotalReturnPct.Or(math.NaN()),
		BuyHoldReturnPct: mj.BuyHoldReturnPct.Or(math.NaN()),
		SharpeRatio:      mj.SharpeRatio.Or(math.NaN()),
		SortinoRatio:     mj.SortinoRatio.Or(math.NaN()),
		MaxDrawdownPct:   mj.MaxDrawdownPct.Or(math.NaN()),
		WinRate:          mj.WinRate.Or(math.NaN()),
		ProfitFactor:     mj.ProfitFactor.Or(math.NaN()),
		TradeCount:       mj.TradeCount,
		AvgWinPct:        mj.AvgWinPct.Or(math.NaN()),
		AvgLossPct:       mj.AvgLossPct.Or(math.NaN()),
		AvgHoldingDays:   mj.AvgHoldingDays.Or(math.NaN()),
	}
	return nil
}

func computeMetrics(trades []Trade, equity []EquityPoint, bars []contracts.PriceBar, riskFreeRate float64) Metrics {
	m := Metrics{
		TradeCount:     len(trades),
		WinRate:        math.NaN(),
		ProfitFactor:   math.NaN(),
		SharpeRatio:    math.NaN(),
		SortinoRatio:   math.NaN(),
		AvgWinPct:      math.NaN(),
		AvgLossPct:     math.NaN(),
		AvgHoldingDays: math.NaN(),
	}

	if len(equity) > 0 {
		m.TotalReturnPct = (equity[len(equity)-1].Equity - 1) * 100
	}
	if len(bars) > 0 && bars[0].Close > 0 {
		m.BuyHoldReturnPct = (bars[len(bars)-1].Close/bars[0].Close - 1) * 100
	}

	m.MaxDrawdownPct = maxDrawdown(equity)
	m.SharpeRatio = sharpe(equity, riskFreeRate)
	m.SortinoRatio = sortino(equity, riskFreeRate)

	if len(trades) == 0 {
		return m
	}

	var wins, losses int
	var winSum, lossSum, gains, lossAbs, holding float64
	for _, t := range trades {
		contribution := t.PnlPct * t.SizeFraction
		if t.PnlPct > 0 {
			wins++
			winSum += t.PnlPct
			gains += contribution
		} else {
			losses++
			lossSum += t.PnlPct
			lossAbs += -contribution
		}
		holding += t.HoldingDays()
	}

	m.WinRate = float64(wins) / float64(len(trades)) * 100
	m.AvgHoldingDays = holding / float64(len(trades))
	if wins > 0 {
		m.AvgWinPct = winSum / float64(wins)
	}
	if losses > 0 {
		m.AvgLossPct = lossSum / float64(losses)
	}
	if lossAbs > 0 {
		m.ProfitFactor = gains / lossAbs
	} else if gains > 0 {
		m.ProfitFactor = math.Inf(1)
	}
	return m
}

// dailyReturns from the equity curve; zero-equity days stop the series
func dailyReturns(equity []EquityPoint) []float64 {
	var out []float64
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev <= 0 {
			break
		}
		out = append(out, equity[i].Equity/prev-1)
	}
	return out
}

// sharpe annualizes the mean daily excess return over its volatility.
// A flat curve has zero volatility and the ratio stays NaN.
func sharpe(equity []EquityPoint, riskFreeRate float64) float64 {
	returns := dailyReturns(equity)
	if len(returns) == 0 {
		return math.NaN()
	}
	mean, stdev := meanStdev(returns)
	if stdev == 0 {
		return math.NaN()
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	return (mean - dailyRF) / stdev * math.Sqrt(tradingDaysPerYear)
}

// sortino penalizes only downside volatility
func sortino(equity []EquityPoint, riskFreeRate float64) float64 {
	returns := dailyReturns(equity)
	if len(returns) == 0 {
		return math.NaN()
	}
	mean, _ := meanStdev(returns)

	var downside float64
	var n int
	for _, r := range returns {
		if r < 0 {
			downside += r * r
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	dd := math.Sqrt(downside / float64(len(returns)))
	if dd == 0 {
		return math.NaN()
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	return (mean - dailyRF) / dd * math.Sqrt(tradingDaysPerYear)
}

func maxDrawdown(equity []EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0].Equity
	maxDD := 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

func meanStdev(values []float64) (mean, stdev float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
