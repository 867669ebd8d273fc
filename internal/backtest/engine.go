package backtest

import (
	"math"
	"time"

	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

// Engine replays a signal history against the underlying price series as a
// FLAT/LONG/SHORT state machine. At most one position is open at a time and
// at most one transition happens per bar: a bar that closes a position
// cannot reopen one.
type Engine struct {
	cfg *strategyconfig.Config
	log *logger.Logger
}

func New(cfg *strategyconfig.Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, log: log.Component("backtest")}
}

// Run simulates the records over the bars, chronologically. Records are
// matched to bars by calendar date; bars without a record simply
// mark-to-market.
func (e *Engine) Run(symbol string, records []contracts.ValuationRecord, bars []contracts.PriceBar) (*Result, error) {
	if len(bars) == 0 {
		return nil, contracts.ErrDataUnavailable
	}
	if err := contracts.ValidateBars(bars); err != nil {
		return nil, err
	}

	byDate := make(map[string]*contracts.ValuationRecord, len(records))
	for i := range records {
		byDate[dateKey(records[i].Date)] = &records[i]
	}

	var (
		pos    *Position
		trades []Trade
		equity = make([]EquityPoint, 0, len(bars))
		value  = 1.0
	)

	closeTrade := func(bar contracts.PriceBar, exitPrice float64, reason string) {
		trade := Trade{
			Side:         pos.Side,
			EntryDate:    pos.EntryDate,
			EntryPrice:   pos.EntryPrice,
			ExitDate:     bar.Date,
			ExitPrice:    exitPrice,
			PnlPct:       pnlPct(pos.Side, pos.EntryPrice, exitPrice),
			SizeFraction: pos.SizeFraction,
			ExitReason:   reason,
		}
		trades = append(trades, trade)
		value *= 1 + trade.PnlPct/100*trade.SizeFraction
		if value < 0 {
			value = 0
		}
		pos = nil
	}

	for i, bar := range bars {
		rec := byDate[dateKey(bar.Date)]
		transitioned := false
		lastBar := i == len(bars)-1

		if pos != nil {
			exitPrice, reason := e.checkIntrabarExit(pos, bar)
			if reason == "" && rec != nil {
				exitPrice, reason = e.checkSignalExit(pos, rec, bar)
			}
			if reason != "" {
				closeTrade(bar, exitPrice, reason)
				transitioned = true
			} else {
				e.updateTrailing(pos, bar, rec)
			}
		}

		// entering on the last bar would force a same-day round trip
		if pos == nil && !transitioned && !lastBar && rec != nil {
			if err := e.maybeEnter(&pos, rec, bar); err != nil {
				return nil, err
			}
		}

		equity = append(equity, EquityPoint{Date: bar.Date, Equity: value})
	}

	// force-close a position left open at the end of the series
	if pos != nil {
		last := bars[len(bars)-1]
		closeTrade(last, last.Close, ExitEndOfData)
		equity[len(equity)-1].Equity = value
	}

	metrics := computeMetrics(trades, equity, bars, e.cfg.Backtest.RiskFreeRate)

	e.log.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"trades":       len(trades),
		"total_return": metrics.TotalReturnPct,
		"max_drawdown": metrics.MaxDrawdownPct,
	}).Info("backtest complete")

	return &Result{Symbol: symbol, Trades: trades, Equity: equity, Metrics: metrics}, nil
}

// checkIntrabarExit tests stop then target against the bar's range,
// worst case first. Gaps through a level fill at the open.
func (e *Engine) checkIntrabarExit(pos *Position, bar contracts.PriceBar) (float64, string) {
	stop := e.effectiveStop(pos)

	if pos.Side == SideLong {
		if bar.Low <= stop {
			return math.Min(stop, bar.Open), ExitStopLoss
		}
		if bar.High >= pos.TakeProfit {
			return math.Max(pos.TakeProfit, bar.Open), ExitTakeProfit
		}
	} else {
		if bar.High >= stop {
			return math.Max(stop, bar.Open), ExitStopLoss
		}
		if bar.Low <= pos.TakeProfit {
			return math.Min(pos.TakeProfit, bar.Open), ExitTakeProfit
		}
	}
	return 0, ""
}

// checkSignalExit closes at the bar close when the signal flips to the
// opposite side, or when NEUTRAL has outlasted the patience window.
func (e *Engine) checkSignalExit(pos *Position, rec *contracts.ValuationRecord, bar contracts.PriceBar) (float64, string) {
	side := rec.Signal.Side()

	opposite := (pos.Side == SideLong && side > 0) || (pos.Side == SideShort && side < 0)
	if opposite {
		return bar.Close, ExitSignalFlip
	}

	if rec.Signal == contracts.SignalNeutral {
		pos.neutralRun++
		if pos.neutralRun > e.cfg.Backtest.NeutralPatience {
			return bar.Close, ExitPatience
		}
	} else {
		pos.neutralRun = 0
	}
	return 0, ""
}

// effectiveStop is the tighter of the fixed stop and the ATR trail
func (e *Engine) effectiveStop(pos *Position) float64 {
	stop := pos.StopLoss
	if !pos.entryATR.Defined {
		return stop
	}
	trailDist := e.cfg.Backtest.ATRTrailMultiple * pos.entryATR.Val
	if pos.Side == SideLong {
		return math.Max(stop, pos.bestPrice-trailDist)
	}
	return math.Min(stop, pos.bestPrice+trailDist)
}

func (e *Engine) updateTrailing(pos *Position, bar contracts.PriceBar, rec *contracts.ValuationRecord) {
	if pos.Side == SideLong {
		pos.bestPrice = math.Max(pos.bestPrice, bar.Close)
	} else {
		pos.bestPrice = math.Min(pos.bestPrice, bar.Close)
	}
	if rec != nil && rec.Indicators.ATR14.Defined {
		pos.entryATR = rec.Indicators.ATR14
	}
}

// maybeEnter opens a position when the signal and confidence clear the
// entry gate. Entry fills at the bar close.
func (e *Engine) maybeEnter(pos **Position, rec *contracts.ValuationRecord, bar contracts.PriceBar) error {
	var side Side
	switch rec.Signal {
	case contracts.SignalLong, contracts.SignalStrongLong:
		side = SideLong
	case contracts.SignalShort, contracts.SignalStrongShort:
		side = SideShort
	default:
		return nil
	}

	minConf := contracts.Confidence(e.cfg.Backtest.MinEntryConfidence)
	if !rec.Confidence.AtLeast(minConf) {
		return nil
	}

	if *pos != nil {
		return &contracts.InvalidPositionStateError{
			Date:  bar.Date,
			State: string((*pos).Side),
			Event: "open position",
		}
	}

	entry := bar.Close
	*pos = &Position{
		Side:         side,
		EntryDate:    bar.Date,
		EntryPrice:   entry,
		StopLoss:     e.initialStop(side, entry, rec),
		TakeProfit:   e.target(side, entry, rec),
		SizeFraction: e.sizeFor(rec.Confidence),
		entryATR:     rec.Indicators.ATR14,
		bestPrice:    entry,
	}
	return nil
}

// initialStop: fixed percentage or the Bollinger band at entry, whichever
// is tighter.
func (e *Engine) initialStop(side Side, entry float64, rec *contracts.ValuationRecord) float64 {
	pct := e.cfg.Backtest.StopLossPct
	if side == SideLong {
		stop := entry * (1 - pct)
		if lb := rec.Indicators.BollingerLower; lb.Defined && lb.Val < entry {
			stop = math.Max(stop, lb.Val)
		}
		return stop
	}
	stop := entry * (1 + pct)
	if ub := rec.Indicators.BollingerUpper; ub.Defined && ub.Val > entry {
		stop = math.Min(stop, ub.Val)
	}
	return stop
}

// target aims past the fair value by the configured band. A fair value on
// the wrong side of the entry falls back to a plain percentage target.
func (e *Engine) target(side Side, entry float64, rec *contracts.ValuationRecord) float64 {
	pct := e.cfg.Backtest.TakeProfitPct
	if side == SideLong {
		tp := rec.FairValue * (1 + pct)
		if tp <= entry {
			tp = entry * (1 + pct)
		}
		return tp
	}
	tp := rec.FairValue * (1 - pct)
	if tp >= entry {
		tp = entry * (1 - pct)
	}
	return tp
}

// sizeFor is the deterministic tier midpoint
func (e *Engine) sizeFor(c contracts.Confidence) float64 {
	s := e.cfg.Backtest.Sizing
	switch c {
	case contracts.ConfidenceVeryHigh:
		return s.VeryHigh.Midpoint()
	case contracts.ConfidenceHigh:
		return s.High.Midpoint()
	default:
		return s.Medium.Midpoint()
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
