package scoring

import (
	"math"
	"sort"

	"github.com/wonny/valuator/internal/contracts"
)

const levelsPerSide = 3

// levels derives support and resistance candidates from the Bollinger
// bands, the fair value estimate and nearby round-number prices, each side
// ordered by proximity to the current price.
func levels(price, fairValue float64, snap contracts.IndicatorSnapshot) (supports, resistances []float64) {
	candidates := []float64{fairValue}
	if snap.BollingerLower.Defined {
		candidates = append(candidates, snap.BollingerLower.Val)
	}
	if snap.BollingerUpper.Defined {
		candidates = append(candidates, snap.BollingerUpper.Val)
	}
	candidates = append(candidates, roundNumbers(price)...)

	seen := make(map[float64]bool, len(candidates))
	for _, c := range candidates {
		if c <= 0 || seen[c] {
			continue
		}
		seen[c] = true
		switch {
		case c < price:
			supports = append(supports, c)
		case c > price:
			resistances = append(resistances, c)
		}
	}

	// closest levels first
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)

	if len(supports) > levelsPerSide {
		supports = supports[:levelsPerSide]
	}
	if len(resistances) > levelsPerSide {
		resistances = resistances[:levelsPerSide]
	}
	return supports, resistances
}

// roundNumbers returns the psychologically round prices bracketing the
// current price. Steps scale with the price's magnitude: for a price in
// the hundreds the steps are 10, 25 and 50.
func roundNumbers(price float64) []float64 {
	if price <= 0 {
		return nil
	}
	base := math.Pow(10, math.Floor(math.Log10(price))) / 10
	steps := []float64{base, base * 2.5, base * 5}

	var out []float64
	for _, step := range steps {
		below := math.Floor(price/step) * step
		above := math.Ceil(price/step) * step
		if below == above { // price exactly on a level
			above += step
		}
		out = append(out, below, above)
	}
	return out
}
