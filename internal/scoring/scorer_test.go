package scoring

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

func testScorer() *Scorer {
	return New(strategyconfig.Default(), logger.NewNop())
}

func makeBars(n int, gen func(i int) (open, high, low, close, volume float64)) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		o, h, l, c, v := gen(i)
		bars[i] = contracts.PriceBar{
			Date: start.AddDate(0, 0, i),
			Open: o, High: h, Low: l, Close: c, Volume: v,
		}
	}
	return bars
}

func trendingBars(n int) []contracts.PriceBar {
	return makeBars(n, func(i int) (float64, float64, float64, float64, float64) {
		p := 200 + float64(i)*0.9 + 8*math.Sin(float64(i)*0.35)
		return p, p + 3, p - 3, p, 1_000_000
	})
}

func TestScoreDeterministic(t *testing.T) {
	s := testScorer()
	bars := trendingBars(300)

	a, err := s.Score("TSLA", bars, contracts.FundamentalSnapshot{})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	b, err := s.Score("TSLA", bars, contracts.FundamentalSnapshot{})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if a.CompositeScore != b.CompositeScore {
		t.Errorf("score not deterministic: %v vs %v", a.CompositeScore, b.CompositeScore)
	}
	if a.Signal != b.Signal || a.Confidence != b.Confidence {
		t.Error("signal/confidence not deterministic")
	}
	if a.FairValue != b.FairValue {
		t.Error("fair value not deterministic")
	}
}

func TestScoreBoundsProperty(t *testing.T) {
	s := testScorer()
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		base := 20 + rng.Float64()*500
		bars := makeBars(300, func(i int) (float64, float64, float64, float64, float64) {
			p := base * (1 + 0.3*math.Sin(float64(i)*0.1+rng.Float64()))
			spread := p * 0.02
			return p, p + spread, p - spread, p, 100_000 + rng.Float64()*1_000_000
		})

		rec, err := s.Score("X", bars, contracts.FundamentalSnapshot{})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if rec.CompositeScore < -100 || rec.CompositeScore > 100 {
			t.Fatalf("run %d: score %v out of bounds", run, rec.CompositeScore)
		}
		if rec.Signal != contracts.SignalForScore(rec.CompositeScore) {
			t.Fatalf("run %d: signal %v does not match score %v", run, rec.Signal, rec.CompositeScore)
		}
	}
}

func TestFairValueInversion(t *testing.T) {
	s := testScorer()
	bars := trendingBars(300)

	rec, err := s.Score("TSLA", bars, contracts.FundamentalSnapshot{})
	if err != nil {
		t.Fatal(err)
	}

	want := rec.CurrentPrice / (1 + rec.CompositeScore/100*0.15)
	if math.Abs(rec.FairValue-want) > 1e-9 {
		t.Errorf("fair value = %v, want %v", rec.FairValue, want)
	}

	// documented calibration: score 47.70 at price 454.43 implies ~388.8
	fair := 454.43 / (1 + 47.70/100*0.15)
	if math.Abs(fair-388.8) > 0.1 {
		t.Errorf("calibration drifted: 454.43 at score 47.70 gives %v, want about 388.8", fair)
	}
}

func TestConfidenceVeryHighTwoFlags(t *testing.T) {
	s := testScorer()
	snap := contracts.IndicatorSnapshot{
		RSI14:          contracts.Defined(75),
		BollingerUpper: contracts.Defined(440),
		BollingerMid:   contracts.Defined(420),
		BollingerLower: contracts.Defined(400),
		ZScore:         contracts.Defined(2.3),
	}
	// price above the upper band: RSI, band and z-score all agree
	got := s.confidence(47.7, 454.43, snap)
	if got != contracts.ConfidenceVeryHigh {
		t.Errorf("confidence = %v, want VERY_HIGH", got)
	}

	// same flags but a weak score cannot reach VERY_HIGH
	got = s.confidence(25, 454.43, snap)
	if got != contracts.ConfidenceHigh {
		t.Errorf("confidence = %v, want HIGH", got)
	}

	// flags disagreeing with the score's sign do not count
	got = s.confidence(-47.7, 454.43, snap)
	if got != contracts.ConfidenceMedium {
		t.Errorf("confidence = %v, want MEDIUM", got)
	}
}

func TestBlendRenormalizesWeights(t *testing.T) {
	s := testScorer()
	last := contracts.PriceBar{Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)}

	c := contracts.CategoryScores{
		Statistical: contracts.Defined(60),
		Relative:    contracts.Defined(40),
		Momentum:    contracts.Defined(20),
		Fundamental: contracts.Undefined(),
	}
	got, excluded, err := s.blend(c, last, 300)
	if err != nil {
		t.Fatal(err)
	}
	want := (0.4*60 + 0.4*40 + 0.1*20) / 0.9
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("blend = %v, want %v", got, want)
	}
	if len(excluded) != 1 || excluded[0] != "fundamental" {
		t.Errorf("excluded = %v, want [fundamental]", excluded)
	}
}

func TestBlendAllUndefined(t *testing.T) {
	s := testScorer()
	last := contracts.PriceBar{Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)}

	_, _, err := s.blend(contracts.CategoryScores{}, last, 5)
	var insufficient *contracts.InsufficientHistoryError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
}

func TestScoreInsufficientHistory(t *testing.T) {
	s := testScorer()
	// few bars, zero volume: every category term is undefined
	bars := makeBars(8, func(i int) (float64, float64, float64, float64, float64) {
		return 100, 101, 99, 100, 0
	})

	_, err := s.Score("X", bars, contracts.FundamentalSnapshot{})
	var insufficient *contracts.InsufficientHistoryError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
}

func TestScoreExcludedCategoryDowngradesConfidence(t *testing.T) {
	s := testScorer()
	bars := trendingBars(300)

	withFund, err := s.Score("TSLA", bars, contracts.FundamentalSnapshot{
		TrailingPE:      contracts.Defined(180),
		SectorAveragePE: contracts.Defined(25),
		PEG:             contracts.Defined(3.2),
	})
	if err != nil {
		t.Fatal(err)
	}
	withoutFund, err := s.Score("TSLA", bars, contracts.FundamentalSnapshot{})
	if err != nil {
		t.Fatal(err)
	}

	if withoutFund.Confidence.Rank() > withFund.Confidence.Rank() {
		t.Errorf("dropping a category must not raise confidence: %v > %v",
			withoutFund.Confidence, withFund.Confidence)
	}
	found := false
	for _, f := range withoutFund.QualityFlags {
		if f == "fundamental_category_excluded" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing exclusion flag, got %v", withoutFund.QualityFlags)
	}
}

func TestRecordJSONStableAcrossRecompute(t *testing.T) {
	s := testScorer()
	bars := trendingBars(300)
	fund := contracts.FundamentalSnapshot{TrailingPE: contracts.Defined(60), SectorAveragePE: contracts.Defined(22)}

	a, err := s.Score("TSLA", bars, fund)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Score("TSLA", bars, fund)
	if err != nil {
		t.Fatal(err)
	}
	if a.PercentDeviation != b.PercentDeviation {
		t.Error("percent deviation not reproducible")
	}
	if len(a.SupportLevels) != len(b.SupportLevels) {
		t.Error("support levels not reproducible")
	}
}
