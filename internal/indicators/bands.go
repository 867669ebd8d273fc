package indicators

import (
	"math"

	"github.com/wonny/valuator/internal/contracts"
)

// BollingerBands holds the band triple plus the relative band width
type BollingerBands struct {
	Upper contracts.Value
	Mid   contracts.Value
	Lower contracts.Value
	Width contracts.Value

	// ZeroVariance is set when the window had no price variance and the
	// bands collapsed onto the mean.
	ZeroVariance bool
}

// Bollinger computes mean +/- k population standard deviations over the
// trailing period closes.
func Bollinger(closes []float64, period int, k float64) BollingerBands {
	if len(closes) < period {
		return BollingerBands{
			Upper: contracts.Undefined(),
			Mid:   contracts.Undefined(),
			Lower: contracts.Undefined(),
			Width: contracts.Undefined(),
		}
	}

	window := closes[len(closes)-period:]
	mean, sigma := meanStddev(window)

	upper := mean + k*sigma
	lower := mean - k*sigma
	bands := BollingerBands{
		Upper:        contracts.Defined(upper),
		Mid:          contracts.Defined(mean),
		Lower:        contracts.Defined(lower),
		ZeroVariance: sigma == 0,
	}
	if mean != 0 {
		bands.Width = contracts.Defined((upper - lower) / mean * 100)
	} else {
		bands.Width = contracts.Undefined()
	}
	return bands
}

// ZScore is (current close - window mean) / window population stddev. A
// zero-variance window clamps to 0 instead of producing Inf; the caller
// records this as a quality flag.
func ZScore(closes []float64, window int) (contracts.Value, bool) {
	if len(closes) < window {
		return contracts.Undefined(), false
	}
	w := closes[len(closes)-window:]
	mean, sigma := meanStddev(w)
	if sigma == 0 {
		return contracts.Defined(0), true
	}
	return contracts.Defined((closes[len(closes)-1] - mean) / sigma), false
}

// PercentileRank is the share of the trailing window closes at or below
// the current close, scaled to 0-100.
func PercentileRank(closes []float64, window int) contracts.Value {
	if len(closes) < window {
		return contracts.Undefined()
	}
	w := closes[len(closes)-window:]
	current := w[len(w)-1]
	count := 0
	for _, c := range w {
		if c <= current {
			count++
		}
	}
	return contracts.Defined(float64(count) / float64(len(w)) * 100)
}

// RangePosition locates the current close within the trailing window's
// high-low range, 0-100. A flat range clamps to 50.
func RangePosition(bars []contracts.PriceBar, window int) (contracts.Value, bool) {
	if len(bars) < window {
		return contracts.Undefined(), false
	}
	w := bars[len(bars)-window:]
	high := w[0].High
	low := w[0].Low
	for _, b := range w[1:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	if high == low {
		return contracts.Defined(50), true
	}
	close := w[len(w)-1].Close
	return contracts.Defined((close - low) / (high - low) * 100), false
}

func meanStddev(values []float64) (mean, sigma float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
