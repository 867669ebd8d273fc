package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuator/internal/backtest"
	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/scoring"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

// fakeProvider serves canned bars without hitting the network
type fakeProvider struct {
	bars []contracts.PriceBar
	err  error
}

func (f *fakeProvider) DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	if lookbackDays < len(f.bars) {
		return f.bars[len(f.bars)-lookbackDays:], nil
	}
	return f.bars, nil
}

func (f *fakeProvider) Fundamentals(ctx context.Context, symbol string) (contracts.FundamentalSnapshot, error) {
	return contracts.FundamentalSnapshot{}, nil
}

func testBars(n int) []contracts.PriceBar {
	bars := make([]contracts.PriceBar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 200 + float64(i)*0.5 + 10*math.Sin(float64(i)*0.3)
		bars[i] = contracts.PriceBar{
			Date: start.AddDate(0, 0, i),
			Open: p, High: p + 4, Low: p - 4, Close: p, Volume: 900_000,
		}
	}
	return bars
}

func testHandler(p *fakeProvider) *SignalHandler {
	cfg := strategyconfig.Default()
	log := logger.NewNop()
	return NewSignalHandler(cfg, "TSLA", p, scoring.New(cfg, log), backtest.New(cfg, log), nil, log)
}

func TestLatestReturnsRecord(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	req := httptest.NewRequest(http.MethodGet, "/api/signal/latest", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rec contracts.ValuationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "TSLA", rec.Symbol)
	assert.NotEmpty(t, rec.Signal)
	assert.GreaterOrEqual(t, rec.CompositeScore, -100.0)
	assert.LessOrEqual(t, rec.CompositeScore, 100.0)
}

func TestLatestSymbolOverride(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	req := httptest.NewRequest(http.MethodGet, "/api/signal/latest?symbol=AAPL", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rec contracts.ValuationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "AAPL", rec.Symbol)
}

func TestLatestProviderFailure(t *testing.T) {
	h := testHandler(&fakeProvider{err: fmt.Errorf("upstream timeout: %w", contracts.ErrDataUnavailable)})

	req := httptest.NewRequest(http.MethodGet, "/api/signal/latest", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}

func TestLatestInsufficientHistory(t *testing.T) {
	// Too few bars for any category: every sub-term is undefined.
	// Zero volume keeps VWAP out too.
	bars := testBars(5)
	for i := range bars {
		bars[i].Volume = 0
	}
	h := testHandler(&fakeProvider{bars: bars})

	req := httptest.NewRequest(http.MethodGet, "/api/signal/latest", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	req := httptest.NewRequest(http.MethodGet, "/api/signal/history", nil)
	w := httptest.NewRecorder()
	h.History(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBacktestEndpoint(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	payload, _ := json.Marshal(backtestRequest{Symbol: "TSLA", LookbackDays: 300})
	req := httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	h.Backtest(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result backtest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "TSLA", result.Symbol)
	require.NotEmpty(t, result.Equity)
	assert.Greater(t, result.Equity[len(result.Equity)-1].Equity, 0.0)
}

func TestBacktestDefaults(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	// Empty body fields fall back to the configured symbol and lookback.
	req := httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	h.Backtest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result backtest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "TSLA", result.Symbol)
}

func TestBacktestBadBody(t *testing.T) {
	h := testHandler(&fakeProvider{bars: testBars(300)})

	req := httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Backtest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
