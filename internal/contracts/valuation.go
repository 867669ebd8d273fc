package contracts

import "time"

// Signal is the discrete trading signal derived from the composite score
type Signal string

const (
	SignalStrongLong  Signal = "STRONG_LONG"
	SignalLong        Signal = "LONG"
	SignalWeakLong    Signal = "WEAK_LONG"
	SignalNeutral     Signal = "NEUTRAL"
	SignalWeakShort   Signal = "WEAK_SHORT"
	SignalShort       Signal = "SHORT"
	SignalStrongShort Signal = "STRONG_SHORT"
)

// SignalForScore maps a composite score to its signal bucket. The buckets
// are exhaustive and non-overlapping over the whole score domain:
// score < -40 and score > 40 take the strong buckets, [-10,10] is NEUTRAL,
// and the half-open bands between tilt toward NEUTRAL at their inner edge.
func SignalForScore(score float64) Signal {
	switch {
	case score < -40:
		return SignalStrongLong
	case score < -20:
		return SignalLong
	case score < -10:
		return SignalWeakLong
	case score <= 10:
		return SignalNeutral
	case score <= 20:
		return SignalWeakShort
	case score <= 40:
		return SignalShort
	default:
		return SignalStrongShort
	}
}

// Side returns -1 for long-side signals (underpriced), +1 for short-side
// signals (overpriced) and 0 for NEUTRAL.
func (s Signal) Side() int {
	switch s {
	case SignalStrongLong, SignalLong, SignalWeakLong:
		return -1
	case SignalStrongShort, SignalShort, SignalWeakShort:
		return 1
	default:
		return 0
	}
}

// Confidence is the conviction tier attached to a signal
type Confidence string

const (
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceVeryHigh Confidence = "VERY_HIGH"
)

// Rank orders confidence tiers: MEDIUM < HIGH < VERY_HIGH
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceVeryHigh:
		return 2
	case ConfidenceHigh:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c is at or above the given tier
func (c Confidence) AtLeast(other Confidence) bool {
	return c.Rank() >= other.Rank()
}

// Downgrade returns the next tier down, bottoming out at MEDIUM
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceVeryHigh:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

// CategoryScores holds the per-category sub-scores behind a composite score.
// A category is undefined when none of its sub-terms could be computed.
type CategoryScores struct {
	Statistical Value `json:"statistical"`
	Relative    Value `json:"relative"`
	Momentum    Value `json:"momentum"`
	Fundamental Value `json:"fundamental"`
}

// ValuationRecord is the immutable daily scoring result. It is a pure
// function of the input history: identical bars and fundamentals always
// produce an identical record.
type ValuationRecord struct {
	Date             time.Time  `json:"date"`
	Symbol           string     `json:"symbol"`
	CompositeScore   float64    `json:"composite_score"` // [-100, 100], positive = overpriced
	Signal           Signal     `json:"signal"`
	Confidence       Confidence `json:"confidence"`
	CurrentPrice     float64    `json:"current_price"`
	FairValue        float64    `json:"fair_value"`
	PercentDeviation float64    `json:"percent_deviation"` // current vs fair value

	SupportLevels    []float64 `json:"support_levels"`
	ResistanceLevels []float64 `json:"resistance_levels"`

	Categories CategoryScores    `json:"categories"`
	Indicators IndicatorSnapshot `json:"indicators"`

	QualityFlags []string `json:"quality_flags,omitempty"`
}
