package indicators

import (
	"errors"
	"testing"

	"github.com/wonny/valuator/internal/contracts"
)

func TestComputeEmptyHistory(t *testing.T) {
	_, err := Compute(nil)
	if !errors.Is(err, contracts.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestComputeRejectsUnorderedBars(t *testing.T) {
	bars := constantBars(10, 100, 1000)
	bars[4].Date, bars[5].Date = bars[5].Date, bars[4].Date

	_, err := Compute(bars)
	var ordErr *contracts.DataOrderingError
	if !errors.As(err, &ordErr) {
		t.Fatalf("expected DataOrderingError, got %v", err)
	}
}

func TestComputeShortHistoryLeavesUndefined(t *testing.T) {
	bars := constantBars(30, 100, 1000)
	snap, err := Compute(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snap.RSI14.Defined {
		t.Error("RSI14 should be defined with 30 bars")
	}
	if !snap.BollingerMid.Defined {
		t.Error("Bollinger should be defined with 30 bars")
	}
	if snap.EMA50.Defined {
		t.Error("EMA50 should be undefined with 30 bars")
	}
	if snap.EMA200.Defined {
		t.Error("EMA200 should be undefined with 30 bars")
	}
	if snap.ZScore.Defined {
		t.Error("z-score should be undefined with 30 bars")
	}
	if snap.RangePos52W.Defined {
		t.Error("range position should be undefined with 30 bars")
	}
}

func TestComputeFullHistory(t *testing.T) {
	bars := constantBars(300, 100, 1000)
	snap, err := Compute(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defined := map[string]contracts.Value{
		"rsi":        snap.RSI14,
		"macd_line":  snap.MACDLine,
		"boll_mid":   snap.BollingerMid,
		"ema50":      snap.EMA50,
		"ema200":     snap.EMA200,
		"vwap":       snap.VWAP,
		"atr":        snap.ATR14,
		"adx":        snap.ADX14,
		"roc10":      snap.ROC10,
		"zscore":     snap.ZScore,
		"percentile": snap.PercentileRank,
		"range_pos":  snap.RangePos52W,
	}
	for name, v := range defined {
		if !v.Defined {
			t.Errorf("%s should be defined with 300 bars", name)
		}
	}

	// constant bars hit every zero-variance clamp
	wantFlags := map[string]bool{
		FlagZScoreZeroVariance:    true,
		FlagBollingerZeroVariance: true,
		FlagFlatRange:             true,
	}
	for _, f := range snap.QualityFlags {
		delete(wantFlags, f)
	}
	for f := range wantFlags {
		t.Errorf("missing quality flag %s", f)
	}
}

func TestComputeDeterministic(t *testing.T) {
	bars := constantBars(300, 100, 1000)
	for i := range bars {
		bars[i].Close = 100 + float64(i%17)
		bars[i].High = bars[i].Close + 2
		bars[i].Low = bars[i].Close - 2
	}
	a, err := Compute(bars)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(bars)
	if err != nil {
		t.Fatal(err)
	}
	if a.RSI14 != b.RSI14 || a.ZScore != b.ZScore || a.ADX14 != b.ADX14 {
		t.Error("Compute should be deterministic over identical input")
	}
}
