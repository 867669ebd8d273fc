package indicators

import (
	"github.com/wonny/valuator/internal/contracts"
)

// Standard indicator windows. The scoring thresholds downstream are
// calibrated to these periods.
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerK       = 2.0
	EMAShortPeriod   = 50
	EMALongPeriod    = 200
	ATRPeriod        = 14
	ADXPeriod        = 14
	ROCShortPeriod   = 10
	ROCLongPeriod    = 30
	StatWindow       = 252 // one trading year: z-score, percentile, VWAP
	RangeWindow      = 252 // 52-week high/low
)

// Quality flags attached to a snapshot when a numeric anomaly was clamped
// instead of propagating NaN/Inf.
const (
	FlagZScoreZeroVariance    = "zscore_zero_variance"
	FlagBollingerZeroVariance = "bollinger_zero_variance"
	FlagFlatRange             = "flat_52w_range"
)

// Compute assembles the full indicator snapshot for the last bar of the
// series. Every indicator whose window exceeds the history is undefined;
// nothing is substituted or fabricated.
func Compute(bars []contracts.PriceBar) (contracts.IndicatorSnapshot, error) {
	if len(bars) == 0 {
		return contracts.IndicatorSnapshot{}, contracts.ErrDataUnavailable
	}
	if err := contracts.ValidateBars(bars); err != nil {
		return contracts.IndicatorSnapshot{}, err
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	last := bars[len(bars)-1]

	snap := contracts.IndicatorSnapshot{Date: last.Date}
	var flags []string

	snap.RSI14 = RSI(closes, RSIPeriod)
	snap.MACDLine, snap.MACDSignal, snap.MACDHistogram = MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)

	bands := Bollinger(closes, BollingerPeriod, BollingerK)
	snap.BollingerUpper = bands.Upper
	snap.BollingerMid = bands.Mid
	snap.BollingerLower = bands.Lower
	snap.BollingerWidth = bands.Width
	if bands.ZeroVariance {
		flags = append(flags, FlagBollingerZeroVariance)
	}

	snap.EMA50 = EMA(closes, EMAShortPeriod)
	snap.EMA200 = EMA(closes, EMALongPeriod)
	snap.VWAP = VWAP(bars, StatWindow)

	snap.ATR14 = ATR(bars, ATRPeriod)
	if snap.ATR14.Defined && last.Close != 0 {
		snap.ATRPercent = contracts.Defined(snap.ATR14.Val / last.Close * 100)
	}
	snap.ADX14 = ADX(bars, ADXPeriod)

	snap.ROC10 = ROC(closes, ROCShortPeriod)
	snap.ROC30 = ROC(closes, ROCLongPeriod)

	var clamped bool
	snap.ZScore, clamped = ZScore(closes, StatWindow)
	if clamped {
		flags = append(flags, FlagZScoreZeroVariance)
	}
	snap.PercentileRank = PercentileRank(closes, StatWindow)
	snap.RangePos52W, clamped = RangePosition(bars, RangeWindow)
	if clamped {
		flags = append(flags, FlagFlatRange)
	}

	snap.QualityFlags = flags
	return snap, nil
}
