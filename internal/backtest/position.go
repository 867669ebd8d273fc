package backtest

import (
	"time"

	"github.com/wonny/valuator/internal/contracts"
)

// Side of an open position
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Exit reasons recorded on closed trades
const (
	ExitStopLoss   = "stop_loss"
	ExitTakeProfit = "take_profit"
	ExitSignalFlip = "signal_flip"
	ExitPatience   = "neutral_patience"
	ExitEndOfData  = "end_of_data"
)

// Position is the single open position. No pyramiding: at most one exists
// at any time.
type Position struct {
	Side         Side
	EntryDate    time.Time
	EntryPrice   float64
	StopLoss     float64
	TakeProfit   float64
	SizeFraction float64

	// trailing state
	entryATR     contracts.Value
	bestPrice    float64 // highest close since entry for longs, lowest for shorts
	neutralRun   int     // consecutive NEUTRAL bars while open
}

// Trade is a closed round trip
type Trade struct {
	Side         Side      `json:"side"`
	EntryDate    time.Time `json:"entry_date"`
	EntryPrice   float64   `json:"entry_price"`
	ExitDate     time.Time `json:"exit_date"`
	ExitPrice    float64   `json:"exit_price"`
	PnlPct       float64   `json:"pnl_pct"`
	SizeFraction float64   `json:"size_fraction"`
	ExitReason   string    `json:"exit_reason"`
}

// HoldingDays is the calendar span of the trade
func (t Trade) HoldingDays() float64 {
	return t.ExitDate.Sub(t.EntryDate).Hours() / 24
}

// EquityPoint is one day of the compounded equity curve
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// Result bundles the trade ledger, the equity curve and aggregate metrics
type Result struct {
	Symbol  string        `json:"symbol"`
	Trades  []Trade       `json:"trades"`
	Equity  []EquityPoint `json:"equity"`
	Metrics Metrics       `json:"metrics"`
}

func pnlPct(side Side, entry, exit float64) float64 {
	if side == SideLong {
		return (exit - entry) / entry * 100
	}
	return (entry - exit) / entry * 100
}
