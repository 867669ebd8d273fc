package indicators

import (
	"math"

	"github.com/wonny/valuator/internal/contracts"
)

// trueRange for bar i, i >= 1
func trueRange(bars []contracts.PriceBar, i int) float64 {
	hl := bars[i].High - bars[i].Low
	hc := math.Abs(bars[i].High - bars[i-1].Close)
	lc := math.Abs(bars[i].Low - bars[i-1].Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR computes the Wilder-smoothed average true range. Seed is the simple
// average of the first period true ranges.
func ATR(bars []contracts.PriceBar, period int) contracts.Value {
	if len(bars) < period+1 {
		return contracts.Undefined()
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(bars, i)
	}
	atr /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(bars, i)) / float64(period)
	}
	return contracts.Defined(atr)
}

// ADX computes Wilder's Average Directional Index: directional movement and
// true range are Wilder-smoothed into DI+ and DI-, the DX series is derived
// from their spread, and ADX is the Wilder average of DX. Needs roughly
// 2*period bars before the first value exists.
func ADX(bars []contracts.PriceBar, period int) contracts.Value {
	if len(bars) < 2*period+1 {
		return contracts.Undefined()
	}

	var smTR, smPlusDM, smMinusDM float64
	dx := make([]float64, 0, len(bars))

	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low

		plusDM := 0.0
		minusDM := 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		tr := trueRange(bars, i)

		if i <= period {
			smTR += tr
			smPlusDM += plusDM
			smMinusDM += minusDM
			if i < period {
				continue
			}
		} else {
			// Wilder smoothing: drop 1/period of the running sum each bar
			smTR = smTR - smTR/float64(period) + tr
			smPlusDM = smPlusDM - smPlusDM/float64(period) + plusDM
			smMinusDM = smMinusDM - smMinusDM/float64(period) + minusDM
		}

		if smTR == 0 {
			dx = append(dx, 0)
			continue
		}
		diPlus := 100 * smPlusDM / smTR
		diMinus := 100 * smMinusDM / smTR
		if diPlus+diMinus == 0 {
			dx = append(dx, 0)
			continue
		}
		dx = append(dx, 100*math.Abs(diPlus-diMinus)/(diPlus+diMinus))
	}

	if len(dx) < period {
		return contracts.Undefined()
	}

	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dx[i]
	}
	adx /= float64(period)
	for i := period; i < len(dx); i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
	}
	return contracts.Defined(adx)
}

// VWAP is the volume-weighted average of the typical price (H+L+C)/3 over
// the trailing window. Daily bars carry no session boundary, so the window
// rolls. Zero cumulative volume leaves it undefined.
func VWAP(bars []contracts.PriceBar, window int) contracts.Value {
	if len(bars) == 0 {
		return contracts.Undefined()
	}
	if window > len(bars) {
		window = len(bars)
	}

	var pv, vol float64
	for _, b := range bars[len(bars)-window:] {
		typical := (b.High + b.Low + b.Close) / 3
		pv += typical * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return contracts.Undefined()
	}
	return contracts.Defined(pv / vol)
}
