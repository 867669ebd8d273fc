package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError stops the program; a strategy file that fails validation
// must never be traded or backtested.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if cfg.Data.LookbackDays < 30 {
		return ValidationError{"data.lookback_days", "must be >= 30"}
	}

	// === Scoring ===
	w := cfg.Scoring.Weights
	for field, v := range map[string]float64{
		"scoring.weights.statistical": w.Statistical,
		"scoring.weights.relative":    w.Relative,
		"scoring.weights.momentum":    w.Momentum,
		"scoring.weights.fundamental": w.Fundamental,
	} {
		if v < 0 || v > 1 {
			return ValidationError{field, "must be in [0, 1]"}
		}
	}
	sum := w.Statistical + w.Relative + w.Momentum + w.Fundamental
	if math.Abs(sum-1.0) > 1e-6 {
		return ValidationError{"scoring.weights", fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}

	if cfg.Scoring.Sensitivity <= 0 || cfg.Scoring.Sensitivity > 1 {
		return ValidationError{"scoring.sensitivity", "must be in (0, 1]"}
	}
	if cfg.Scoring.ZScoreClip <= 0 {
		return ValidationError{"scoring.zscore_clip", "must be > 0"}
	}
	if cfg.Scoring.ROCCapPct <= 0 {
		return ValidationError{"scoring.roc_cap_pct", "must be > 0"}
	}
	if cfg.Scoring.EMADeviationCapPct <= 0 {
		return ValidationError{"scoring.ema_deviation_cap_pct", "must be > 0"}
	}

	// === Confirmation ===
	c := cfg.Confirmation
	if c.RSIOversold <= 0 || c.RSIOverbought >= 100 || c.RSIOversold >= c.RSIOverbought {
		return ValidationError{"confirmation", "need 0 < rsi_oversold < rsi_overbought < 100"}
	}
	if c.ZScoreAbs <= 0 {
		return ValidationError{"confirmation.zscore_abs", "must be > 0"}
	}
	if c.PercentileBand <= 0 || c.PercentileBand > 50 {
		return ValidationError{"confirmation.percentile_band", "must be in (0, 50]"}
	}

	// === Backtest ===
	b := cfg.Backtest
	if b.StopLossPct <= 0 || b.StopLossPct >= 1 {
		return ValidationError{"backtest.stop_loss_pct", "must be in (0, 1)"}
	}
	if b.TakeProfitPct <= 0 || b.TakeProfitPct >= 1 {
		return ValidationError{"backtest.take_profit_pct", "must be in (0, 1)"}
	}
	if b.ATRTrailMultiple <= 0 {
		return ValidationError{"backtest.atr_trail_multiple", "must be > 0"}
	}
	if b.NeutralPatience < 0 {
		return ValidationError{"backtest.neutral_patience_days", "must be >= 0"}
	}
	switch b.MinEntryConfidence {
	case "MEDIUM", "HIGH", "VERY_HIGH":
	default:
		return ValidationError{"backtest.min_entry_confidence", "must be MEDIUM, HIGH or VERY_HIGH"}
	}
	if b.RiskFreeRate < 0 || b.RiskFreeRate > 0.5 {
		return ValidationError{"backtest.risk_free_rate", "must be in [0, 0.5]"}
	}

	// sizing ranges: valid per tier and ordered across tiers
	tiers := []struct {
		field string
		r     SizeRange
	}{
		{"backtest.sizing.medium", b.Sizing.Medium},
		{"backtest.sizing.high", b.Sizing.High},
		{"backtest.sizing.very_high", b.Sizing.VeryHigh},
	}
	for _, t := range tiers {
		if t.r.Min < 0 || t.r.Max > 1 || t.r.Min > t.r.Max {
			return ValidationError{t.field, "need 0 <= min <= max <= 1"}
		}
	}
	if b.Sizing.Medium.Max > b.Sizing.High.Min || b.Sizing.High.Max > b.Sizing.VeryHigh.Min {
		return ValidationError{"backtest.sizing", "tier ranges must not invert: medium <= high <= very_high"}
	}

	return nil
}
