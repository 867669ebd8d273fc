package contracts

import "time"

// PriceBar is a single daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// ValidateBars checks that dates are strictly increasing and unique.
// Bad input is rejected with a DataOrderingError, never reordered.
func ValidateBars(bars []PriceBar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return &DataOrderingError{Index: i, Date: bars[i].Date}
		}
	}
	return nil
}

// FundamentalSnapshot holds valuation ratios for the current date.
// Any ratio may be unavailable from the provider.
type FundamentalSnapshot struct {
	TrailingPE      Value `json:"trailing_pe"`
	SectorAveragePE Value `json:"sector_average_pe"`
	PS              Value `json:"ps"`
	PB              Value `json:"pb"`
	PEG             Value `json:"peg"`
}

// Empty reports whether no fundamental ratio is available
func (f FundamentalSnapshot) Empty() bool {
	return !f.TrailingPE.Defined && !f.PS.Defined && !f.PB.Defined && !f.PEG.Defined
}
