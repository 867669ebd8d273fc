package scoring

import (
	"fmt"

	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/indicators"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

// Scorer turns a price history plus a fundamental snapshot into a daily
// ValuationRecord. It is a pure function of its input: no clock, no
// external state, so recomputing a past date reproduces the record
// bit for bit.
type Scorer struct {
	cfg *strategyconfig.Config
	log *logger.Logger
}

func New(cfg *strategyconfig.Config, log *logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, log: log.Component("scorer")}
}

// Score computes the record for the last bar of the series.
func (s *Scorer) Score(symbol string, bars []contracts.PriceBar, fundamentals contracts.FundamentalSnapshot) (*contracts.ValuationRecord, error) {
	snap, err := indicators.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	last := bars[len(bars)-1]
	price := last.Close
	if price <= 0 {
		return nil, fmt.Errorf("invalid close price %v at %s", price, last.Date.Format("2006-01-02"))
	}

	flags := append([]string(nil), snap.QualityFlags...)

	categories := contracts.CategoryScores{
		Statistical: s.statisticalScore(price, snap),
		Relative:    s.relativeScore(snap),
		Momentum:    s.momentumScore(price, snap),
		Fundamental: s.fundamentalScore(fundamentals),
	}

	composite, excluded, err := s.blend(categories, last, len(bars))
	if err != nil {
		return nil, err
	}
	for _, name := range excluded {
		flags = append(flags, name+"_category_excluded")
	}

	signal := contracts.SignalForScore(composite)
	confidence := s.confidence(composite, price, snap)
	if len(excluded) > 0 {
		confidence = confidence.Downgrade()
	}

	fairValue := price / (1 + composite/100*s.cfg.Scoring.Sensitivity)
	deviation := (price - fairValue) / fairValue * 100

	supports, resistances := levels(price, fairValue, snap)

	s.log.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"date":       last.Date.Format("2006-01-02"),
		"score":      composite,
		"signal":     string(signal),
		"confidence": string(confidence),
		"fair_value": fairValue,
		"excluded":   excluded,
	}).Debug("valuation scored")

	return &contracts.ValuationRecord{
		Date:             last.Date,
		Symbol:           symbol,
		CompositeScore:   composite,
		Signal:           signal,
		Confidence:       confidence,
		CurrentPrice:     price,
		FairValue:        fairValue,
		PercentDeviation: deviation,
		SupportLevels:    supports,
		ResistanceLevels: resistances,
		Categories:       categories,
		Indicators:       snap,
		QualityFlags:     flags,
	}, nil
}

// blend combines category scores with renormalized weights. Excluded
// categories give their weight to the rest; when every category is
// undefined no score exists, even degraded.
func (s *Scorer) blend(c contracts.CategoryScores, last contracts.PriceBar, nBars int) (float64, []string, error) {
	w := s.cfg.Scoring.Weights
	parts := []struct {
		name   string
		weight float64
		score  contracts.Value
	}{
		{"statistical", w.Statistical, c.Statistical},
		{"relative", w.Relative, c.Relative},
		{"momentum", w.Momentum, c.Momentum},
		{"fundamental", w.Fundamental, c.Fundamental},
	}

	var weighted, weightSum float64
	var excluded []string
	for _, p := range parts {
		if !p.score.Defined {
			excluded = append(excluded, p.name)
			continue
		}
		weighted += p.weight * p.score.Val
		weightSum += p.weight
	}

	if weightSum == 0 {
		return 0, nil, &contracts.InsufficientHistoryError{Date: last.Date, Bars: nBars}
	}
	return clamp(weighted/weightSum, -100, 100), excluded, nil
}

// confidence counts confirmation flags that agree with the score's sign
func (s *Scorer) confidence(score, price float64, snap contracts.IndicatorSnapshot) contracts.Confidence {
	c := s.cfg.Confirmation
	agreeing := 0

	overpriced := score > 0
	agree := func(flagOverpriced bool) {
		if flagOverpriced == overpriced {
			agreeing++
		}
	}

	if snap.RSI14.Defined {
		if snap.RSI14.Val > c.RSIOverbought {
			agree(true)
		} else if snap.RSI14.Val < c.RSIOversold {
			agree(false)
		}
	}
	if snap.BollingerUpper.Defined && snap.BollingerLower.Defined {
		if price > snap.BollingerUpper.Val {
			agree(true)
		} else if price < snap.BollingerLower.Val {
			agree(false)
		}
	}
	if snap.ZScore.Defined {
		if snap.ZScore.Val > c.ZScoreAbs {
			agree(true)
		} else if snap.ZScore.Val < -c.ZScoreAbs {
			agree(false)
		}
	}
	if snap.PercentileRank.Defined {
		if snap.PercentileRank.Val-50 > c.PercentileBand {
			agree(true)
		} else if 50-snap.PercentileRank.Val > c.PercentileBand {
			agree(false)
		}
	}

	abs := score
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > 40 && agreeing >= 2:
		return contracts.ConfidenceVeryHigh
	case abs > 20 && agreeing >= 1:
		return contracts.ConfidenceHigh
	default:
		return contracts.ConfidenceMedium
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// average of the defined values; undefined when none are
func average(values ...contracts.Value) contracts.Value {
	sum := 0.0
	n := 0
	for _, v := range values {
		if v.Defined {
			sum += v.Val
			n++
		}
	}
	if n == 0 {
		return contracts.Undefined()
	}
	return contracts.Defined(sum / float64(n))
}
