package provider

import (
	"context"

	"github.com/wonny/valuator/internal/contracts"
)

// MarketDataProvider supplies the raw inputs for scoring: an ordered daily
// bar history and a fundamental snapshot for the current date. The core
// never fetches; it receives these once, upfront.
type MarketDataProvider interface {
	// DailyBars returns at most lookbackDays of trailing daily bars in
	// strictly increasing date order. An empty result is
	// contracts.ErrDataUnavailable.
	DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error)

	// Fundamentals returns whatever valuation ratios the source exposes.
	// Missing ratios are undefined values, not errors.
	Fundamentals(ctx context.Context, symbol string) (contracts.FundamentalSnapshot, error)
}
