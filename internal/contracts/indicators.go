package contracts

import "time"

// IndicatorSnapshot is the fixed-shape set of technical indicator values for
// one date. A field is undefined when the trailing window needs more bars
// than the history holds.
type IndicatorSnapshot struct {
	Date time.Time `json:"date"`

	RSI14 Value `json:"rsi_14"`

	MACDLine      Value `json:"macd_line"`
	MACDSignal    Value `json:"macd_signal"`
	MACDHistogram Value `json:"macd_histogram"`

	BollingerUpper Value `json:"bollinger_upper"`
	BollingerMid   Value `json:"bollinger_mid"`
	BollingerLower Value `json:"bollinger_lower"`
	BollingerWidth Value `json:"bollinger_width"`

	EMA50  Value `json:"ema_50"`
	EMA200 Value `json:"ema_200"`
	VWAP   Value `json:"vwap"`

	ATR14      Value `json:"atr_14"`
	ATRPercent Value `json:"atr_percent"`
	ADX14      Value `json:"adx_14"`

	ROC10 Value `json:"roc_10"`
	ROC30 Value `json:"roc_30"`

	ZScore         Value `json:"z_score"`
	PercentileRank Value `json:"percentile_rank"` // 0-100
	RangePos52W    Value `json:"range_pos_52w"`   // 0-100

	// QualityFlags records numeric anomalies (zero-variance windows etc.)
	// that were clamped instead of propagating NaN/Inf.
	QualityFlags []string `json:"quality_flags,omitempty"`
}
