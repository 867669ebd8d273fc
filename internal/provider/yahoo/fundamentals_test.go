package yahoo

import (
	"strings"
	"testing"
)

const statsFixture = `
<html><body>
<table>
  <tr><td>Market Cap</td><td>1.45T</td></tr>
  <tr><td>Trailing P/E</td><td>182.34</td></tr>
  <tr><td>Price/Sales (ttm)</td><td>12.48</td></tr>
  <tr><td>Price/Book (mrq)</td><td>14.02</td></tr>
  <tr><td>PEG Ratio (5yr expected)</td><td>3.21</td></tr>
  <tr><td>Forward P/E</td><td>N/A</td></tr>
</table>
</body></html>`

func TestParseKeyStatistics(t *testing.T) {
	snap, err := parseKeyStatistics(strings.NewReader(statsFixture))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if !snap.TrailingPE.Defined || snap.TrailingPE.Val != 182.34 {
		t.Errorf("trailing PE = %v, want 182.34", snap.TrailingPE)
	}
	if !snap.PS.Defined || snap.PS.Val != 12.48 {
		t.Errorf("P/S = %v, want 12.48", snap.PS)
	}
	if !snap.PB.Defined || snap.PB.Val != 14.02 {
		t.Errorf("P/B = %v, want 14.02", snap.PB)
	}
	if !snap.PEG.Defined || snap.PEG.Val != 3.21 {
		t.Errorf("PEG = %v, want 3.21", snap.PEG)
	}
	if snap.SectorAveragePE.Defined {
		t.Error("sector average PE is never published, must stay undefined")
	}
}

func TestParseKeyStatisticsEmptyPage(t *testing.T) {
	snap, err := parseKeyStatistics(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !snap.Empty() {
		t.Errorf("empty page should yield empty snapshot, got %+v", snap)
	}
}

func TestParseStatValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		defined bool
	}{
		{"182.34", 182.34, true},
		{"1,234.56", 1234.56, true},
		{" 42 ", 42, true},
		{"N/A", 0, false},
		{"--", 0, false},
		{"", 0, false},
		{"1.45T", 0, false},
	}
	for _, tt := range tests {
		got := parseStatValue(tt.raw)
		if got.Defined != tt.defined {
			t.Errorf("parseStatValue(%q).Defined = %v, want %v", tt.raw, got.Defined, tt.defined)
			continue
		}
		if tt.defined && got.Val != tt.want {
			t.Errorf("parseStatValue(%q) = %v, want %v", tt.raw, got.Val, tt.want)
		}
	}
}
