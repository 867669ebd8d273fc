package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

func testEngine() *Engine {
	return New(strategyconfig.Default(), logger.NewNop())
}

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func bar(d int, open, high, low, close float64) contracts.PriceBar {
	return contracts.PriceBar{Date: day(d), Open: open, High: high, Low: low, Close: close, Volume: 1000}
}

func flatBar(d int, price float64) contracts.PriceBar {
	return bar(d, price, price, price, price)
}

func rec(d int, sig contracts.Signal, conf contracts.Confidence, fairValue float64) contracts.ValuationRecord {
	return contracts.ValuationRecord{
		Date:       day(d),
		Symbol:     "TSLA",
		Signal:     sig,
		Confidence: conf,
		FairValue:  fairValue,
	}
}

func TestRunNoSignalsStaysFlat(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{flatBar(0, 100), flatBar(1, 100), flatBar(2, 100)}

	res, err := e.Run("TSLA", nil, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("trades = %d, want 0", len(res.Trades))
	}
	for _, p := range res.Equity {
		if p.Equity != 1.0 {
			t.Errorf("equity at %v = %v, want 1.0", p.Date, p.Equity)
		}
	}
	if !math.IsNaN(res.Metrics.SharpeRatio) {
		t.Errorf("flat curve Sharpe = %v, want NaN", res.Metrics.SharpeRatio)
	}
	if !math.IsNaN(res.Metrics.WinRate) {
		t.Errorf("zero-trade win rate = %v, want NaN", res.Metrics.WinRate)
	}
}

func TestRunLongRoundTrip(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{
		flatBar(0, 100), // LONG signal, entry at close
		bar(1, 101, 105, 100, 104),
		bar(2, 105, 130, 104, 126), // target 126 hit intrabar
		flatBar(3, 126),
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Side != SideLong {
		t.Errorf("side = %v, want LONG", tr.Side)
	}
	if tr.EntryPrice != 100 {
		t.Errorf("entry = %v, want 100", tr.EntryPrice)
	}
	if tr.ExitReason != ExitTakeProfit {
		t.Errorf("exit reason = %v, want take_profit", tr.ExitReason)
	}
	if tr.ExitPrice != 126 { // fair 120 * 1.05
		t.Errorf("exit = %v, want 126", tr.ExitPrice)
	}
	if !tr.ExitDate.After(tr.EntryDate) {
		t.Error("exit date must be after entry date")
	}
	// HIGH tier midpoint
	if math.Abs(tr.SizeFraction-0.6) > 1e-9 {
		t.Errorf("size = %v, want 0.6", tr.SizeFraction)
	}
	// equity compounds by pnl * size: 26% * 0.6
	want := 1 + 0.26*0.6
	if got := res.Equity[len(res.Equity)-1].Equity; math.Abs(got-want) > 1e-9 {
		t.Errorf("final equity = %v, want %v", got, want)
	}
}

func TestStopCheckedBeforeTarget(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{
		flatBar(0, 100),
		bar(1, 100, 130, 80, 100), // both stop (85) and target (126) in range
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.ExitReason != ExitStopLoss {
		t.Errorf("exit reason = %v, want stop_loss (worst case first)", tr.ExitReason)
	}
	if tr.ExitPrice != 85 { // entry * (1 - 0.15)
		t.Errorf("exit = %v, want 85", tr.ExitPrice)
	}
}

func TestGapThroughStopFillsAtOpen(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{
		flatBar(0, 100),
		bar(1, 70, 75, 65, 72), // gaps far below the 85 stop
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.Trades[0].ExitPrice != 70 {
		t.Errorf("gap exit = %v, want open 70", res.Trades[0].ExitPrice)
	}
}

func TestBollingerTightensStop(t *testing.T) {
	e := testEngine()
	r := rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120)
	r.Indicators.BollingerLower = contracts.Defined(95)

	bars := []contracts.PriceBar{
		flatBar(0, 100),
		bar(1, 97, 98, 94, 96), // breaches the 95 band stop, not the 85 one
	}
	res, err := e.Run("TSLA", []contracts.ValuationRecord{r}, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 || res.Trades[0].ExitPrice != 95 {
		t.Fatalf("trades = %v, want one stop exit at 95", res.Trades)
	}
}

func TestSignalFlipExitsAtClose(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{
		flatBar(0, 100),
		flatBar(1, 102),
		flatBar(2, 103),
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120),
		rec(1, contracts.SignalShort, contracts.ConfidenceVeryHigh, 90),
		rec(2, contracts.SignalShort, contracts.ConfidenceVeryHigh, 90),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if res.Trades[0].ExitReason != ExitSignalFlip {
		t.Errorf("exit reason = %v, want signal_flip", res.Trades[0].ExitReason)
	}
	if res.Trades[0].ExitDate != day(1) {
		t.Errorf("exit date = %v, want day 1", res.Trades[0].ExitDate)
	}
	// one transition per bar: no short entry on the flip bar, and the last
	// bar never opens a position
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
}

func TestNeutralPatienceExit(t *testing.T) {
	e := testEngine() // patience = 3
	bars := make([]contracts.PriceBar, 7)
	for i := range bars {
		bars[i] = flatBar(i, 100)
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalLong, contracts.ConfidenceHigh, 120),
		rec(1, contracts.SignalNeutral, contracts.ConfidenceMedium, 100),
		rec(2, contracts.SignalNeutral, contracts.ConfidenceMedium, 100),
		rec(3, contracts.SignalNeutral, contracts.ConfidenceMedium, 100),
		rec(4, contracts.SignalNeutral, contracts.ConfidenceMedium, 100),
		rec(5, contracts.SignalNeutral, contracts.ConfidenceMedium, 100),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	if res.Trades[0].ExitReason != ExitPatience {
		t.Errorf("exit reason = %v, want neutral_patience", res.Trades[0].ExitReason)
	}
	// patience 3: the 4th consecutive NEUTRAL bar closes the position
	if res.Trades[0].ExitDate != day(4) {
		t.Errorf("exit date = %v, want day 4", res.Trades[0].ExitDate)
	}
}

func TestWeakOrLowConfidenceSignalsDoNotEnter(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{flatBar(0, 100), flatBar(1, 100), flatBar(2, 100)}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalWeakLong, contracts.ConfidenceVeryHigh, 120),
		rec(1, contracts.SignalLong, contracts.ConfidenceMedium, 120),
		rec(2, contracts.SignalNeutral, contracts.ConfidenceVeryHigh, 100),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 0 {
		t.Errorf("trades = %v, want none", res.Trades)
	}
}

func TestNoOverlappingPositions(t *testing.T) {
	e := testEngine()
	// alternating aggressive signals over a noisy series
	var bars []contracts.PriceBar
	var records []contracts.ValuationRecord
	for i := 0; i < 60; i++ {
		p := 100 + 20*math.Sin(float64(i)*0.4)
		bars = append(bars, bar(i, p, p+5, p-5, p))
		switch {
		case i%7 == 0:
			records = append(records, rec(i, contracts.SignalStrongLong, contracts.ConfidenceVeryHigh, p*1.2))
		case i%5 == 0:
			records = append(records, rec(i, contracts.SignalStrongShort, contracts.ConfidenceVeryHigh, p*0.8))
		default:
			records = append(records, rec(i, contracts.SignalNeutral, contracts.ConfidenceMedium, p))
		}
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	for i, tr := range res.Trades {
		if !tr.ExitDate.After(tr.EntryDate) {
			t.Errorf("trade %d: exit %v not after entry %v", i, tr.ExitDate, tr.EntryDate)
		}
		if i > 0 && res.Trades[i-1].ExitDate.After(tr.EntryDate) {
			t.Errorf("trade %d overlaps previous exit", i)
		}
	}
}

func TestShortRoundTrip(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{
		flatBar(0, 100),
		bar(1, 98, 99, 80, 86), // short target 85.5 (fair 90 * 0.95) hit
	}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalStrongShort, contracts.ConfidenceVeryHigh, 90),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Side != SideShort || tr.ExitReason != ExitTakeProfit {
		t.Errorf("trade = %+v, want short take_profit", tr)
	}
	if tr.PnlPct <= 0 {
		t.Errorf("short profit = %v, want > 0", tr.PnlPct)
	}
	// VERY_HIGH tier midpoint
	if math.Abs(tr.SizeFraction-0.9) > 1e-9 {
		t.Errorf("size = %v, want 0.9", tr.SizeFraction)
	}
}

func TestOpenPositionClosedAtEndOfData(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{flatBar(0, 100), flatBar(1, 110)}
	records := []contracts.ValuationRecord{
		rec(0, contracts.SignalStrongLong, contracts.ConfidenceVeryHigh, 150),
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	if res.Trades[0].ExitReason != ExitEndOfData {
		t.Errorf("exit reason = %v, want end_of_data", res.Trades[0].ExitReason)
	}
	if math.Abs(res.Trades[0].PnlPct-10) > 1e-9 {
		t.Errorf("pnl = %v, want 10", res.Trades[0].PnlPct)
	}
}

func TestRunRejectsUnorderedBars(t *testing.T) {
	e := testEngine()
	bars := []contracts.PriceBar{flatBar(1, 100), flatBar(0, 100)}
	if _, err := e.Run("TSLA", nil, bars); err == nil {
		t.Error("expected ordering error")
	}
}

func TestEquityNeverNegative(t *testing.T) {
	e := testEngine()
	// repeated max-size losing shorts in a doubling market
	var bars []contracts.PriceBar
	var records []contracts.ValuationRecord
	price := 100.0
	for i := 0; i < 40; i++ {
		price *= 1.08
		bars = append(bars, bar(i, price, price*1.2, price*0.99, price*1.18))
		records = append(records, rec(i, contracts.SignalStrongShort, contracts.ConfidenceVeryHigh, price*0.8))
	}

	res, err := e.Run("TSLA", records, bars)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Equity {
		if p.Equity < 0 {
			t.Fatalf("equity at %v = %v, must stay >= 0", p.Date, p.Equity)
		}
	}
}
