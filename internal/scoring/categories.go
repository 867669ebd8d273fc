package scoring

import (
	"github.com/wonny/valuator/internal/contracts"
)

// Baselines for fundamental ratios without a sector reference. A PEG of 1
// is conventionally fair; the P/B and P/S anchors are broad-market medians.
const (
	pegFairValue = 1.0
	pbBaseline   = 3.0
	psBaseline   = 2.0

	// a MACD histogram of 2% of price maps to a +/-100 momentum term
	macdHistCapPct = 2.0
)

// statisticalScore blends mean-reversion terms: the 252-day z-score, price
// deviation versus EMA50/EMA200/VWAP, and the Bollinger band position.
// Positive means overpriced. Each term is scaled to +/-100 and the defined
// ones are averaged.
func (s *Scorer) statisticalScore(price float64, snap contracts.IndicatorSnapshot) contracts.Value {
	cfg := s.cfg.Scoring

	var z contracts.Value
	if snap.ZScore.Defined {
		clipped := clamp(snap.ZScore.Val, -cfg.ZScoreClip, cfg.ZScoreClip)
		z = contracts.Defined(clipped / cfg.ZScoreClip * 100)
	}

	return average(
		z,
		deviationTerm(price, snap.EMA50, cfg.EMADeviationCapPct),
		deviationTerm(price, snap.EMA200, cfg.EMADeviationCapPct),
		deviationTerm(price, snap.VWAP, cfg.EMADeviationCapPct),
		bollingerPosition(price, snap),
	)
}

// deviationTerm maps the percentage gap between price and an anchor to
// +/-100, saturating at capPct.
func deviationTerm(price float64, anchor contracts.Value, capPct float64) contracts.Value {
	if !anchor.Defined || anchor.Val == 0 {
		return contracts.Undefined()
	}
	pct := (price - anchor.Val) / anchor.Val * 100
	return contracts.Defined(clamp(pct/capPct*100, -100, 100))
}

// bollingerPosition locates price within the band: +100 at the upper band,
// -100 at the lower, 0 at the mid. Collapsed bands clamp to 0.
func bollingerPosition(price float64, snap contracts.IndicatorSnapshot) contracts.Value {
	if !snap.BollingerUpper.Defined || !snap.BollingerMid.Defined || !snap.BollingerLower.Defined {
		return contracts.Undefined()
	}
	mid := snap.BollingerMid.Val
	var half float64
	if price >= mid {
		half = snap.BollingerUpper.Val - mid
	} else {
		half = mid - snap.BollingerLower.Val
	}
	if half == 0 {
		return contracts.Defined(0)
	}
	return contracts.Defined(clamp((price-mid)/half*100, -100, 100))
}

// relativeScore maps percentile rank and 52-week range position from their
// 0-100 domain onto +/-100 around the midpoint.
func (s *Scorer) relativeScore(snap contracts.IndicatorSnapshot) contracts.Value {
	var rank, rangePos contracts.Value
	if snap.PercentileRank.Defined {
		rank = contracts.Defined((snap.PercentileRank.Val - 50) * 2)
	}
	if snap.RangePos52W.Defined {
		rangePos = contracts.Defined((snap.RangePos52W.Val - 50) * 2)
	}
	return average(rank, rangePos)
}

// momentumScore blends RSI, rate-of-change and the MACD histogram
func (s *Scorer) momentumScore(price float64, snap contracts.IndicatorSnapshot) contracts.Value {
	cfg := s.cfg.Scoring

	var rsi contracts.Value
	if snap.RSI14.Defined {
		rsi = contracts.Defined(clamp((snap.RSI14.Val-50)*2, -100, 100))
	}

	rocTerm := func(roc contracts.Value) contracts.Value {
		if !roc.Defined {
			return contracts.Undefined()
		}
		return contracts.Defined(clamp(roc.Val/cfg.ROCCapPct*100, -100, 100))
	}

	var macd contracts.Value
	if snap.MACDHistogram.Defined && price > 0 {
		histPct := snap.MACDHistogram.Val / price * 100
		macd = contracts.Defined(clamp(histPct/macdHistCapPct*100, -100, 100))
	}

	return average(rsi, rocTerm(snap.ROC10), rocTerm(snap.ROC30), macd)
}

// fundamentalScore compares valuation ratios against their anchors:
// trailing P/E versus the sector average, PEG versus 1, P/B and P/S versus
// broad-market baselines.
func (s *Scorer) fundamentalScore(f contracts.FundamentalSnapshot) contracts.Value {
	var pe contracts.Value
	if f.TrailingPE.Defined && f.SectorAveragePE.Defined && f.SectorAveragePE.Val > 0 {
		pe = contracts.Defined(clamp((f.TrailingPE.Val/f.SectorAveragePE.Val-1)*100, -100, 100))
	}

	ratioTerm := func(v contracts.Value, baseline float64) contracts.Value {
		if !v.Defined || baseline <= 0 {
			return contracts.Undefined()
		}
		return contracts.Defined(clamp((v.Val/baseline-1)*100, -100, 100))
	}

	return average(
		pe,
		ratioTerm(f.PEG, pegFairValue),
		ratioTerm(f.PB, pbBaseline),
		ratioTerm(f.PS, psBaseline),
	)
}
