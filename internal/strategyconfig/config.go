package strategyconfig

// Config is the full valuation strategy definition. One YAML file is the
// single source of truth; every tunable the engine reads lives here.
type Config struct {
	Meta         Meta         `yaml:"meta" json:"meta"`
	Data         Data         `yaml:"data" json:"data"`
	Scoring      Scoring      `yaml:"scoring" json:"scoring"`
	Confirmation Confirmation `yaml:"confirmation" json:"confirmation"`
	Backtest     Backtest     `yaml:"backtest" json:"backtest"`
}

type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Data bounds the price history request
type Data struct {
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`
}

// Scoring drives the composite score blend
type Scoring struct {
	Weights Weights `yaml:"weights" json:"weights"` // sum = 1.0

	// Sensitivity calibrates the fair-value inversion
	// fairValue = price / (1 + score/100 * sensitivity)
	Sensitivity float64 `yaml:"sensitivity" json:"sensitivity"`

	// ZScoreClip bounds the statistical z-score term before scaling to +/-100
	ZScoreClip float64 `yaml:"zscore_clip" json:"zscore_clip"`

	// ROCCapPct is the absolute ROC move that maps to a +/-100 momentum term
	ROCCapPct float64 `yaml:"roc_cap_pct" json:"roc_cap_pct"`

	// EMADeviationCapPct is the price-vs-EMA deviation mapping to +/-100
	EMADeviationCapPct float64 `yaml:"ema_deviation_cap_pct" json:"ema_deviation_cap_pct"`
}

type Weights struct {
	Statistical float64 `yaml:"statistical" json:"statistical"`
	Relative    float64 `yaml:"relative" json:"relative"`
	Momentum    float64 `yaml:"momentum" json:"momentum"`
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
}

// Confirmation holds the flag thresholds feeding the confidence tier
type Confirmation struct {
	RSIOverbought  float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	RSIOversold    float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	ZScoreAbs      float64 `yaml:"zscore_abs" json:"zscore_abs"`
	PercentileBand float64 `yaml:"percentile_band" json:"percentile_band"` // |rank-50| threshold
}

// Backtest holds the position state machine tunables
type Backtest struct {
	StopLossPct        float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`               // e.g. 0.15
	TakeProfitPct      float64 `yaml:"take_profit_pct" json:"take_profit_pct"`           // fair value band, e.g. 0.05
	ATRTrailMultiple   float64 `yaml:"atr_trail_multiple" json:"atr_trail_multiple"`     // trailing stop = N x ATR
	NeutralPatience    int     `yaml:"neutral_patience_days" json:"neutral_patience_days"`
	MinEntryConfidence string  `yaml:"min_entry_confidence" json:"min_entry_confidence"` // MEDIUM|HIGH|VERY_HIGH
	RiskFreeRate       float64 `yaml:"risk_free_rate" json:"risk_free_rate"`             // annualized
	Sizing             Sizing  `yaml:"sizing" json:"sizing"`
}

// Sizing maps confidence tiers to position size fractions
type Sizing struct {
	VeryHigh SizeRange `yaml:"very_high" json:"very_high"`
	High     SizeRange `yaml:"high" json:"high"`
	Medium   SizeRange `yaml:"medium" json:"medium"`
}

type SizeRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Midpoint is the deterministic default size within the range
func (r SizeRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}
