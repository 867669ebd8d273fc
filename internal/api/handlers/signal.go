package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/valuator/internal/backtest"
	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/internal/history"
	"github.com/wonny/valuator/internal/provider"
	"github.com/wonny/valuator/internal/scoring"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

// SignalHandler serves valuation signals and backtests over HTTP
type SignalHandler struct {
	cfg      *strategyconfig.Config
	symbol   string
	provider provider.MarketDataProvider
	scorer   *scoring.Scorer
	engine   *backtest.Engine
	repo     *history.RecordRepository // nil when no database is configured
	logger   *logger.Logger
}

func NewSignalHandler(
	cfg *strategyconfig.Config,
	symbol string,
	p provider.MarketDataProvider,
	scorer *scoring.Scorer,
	engine *backtest.Engine,
	repo *history.RecordRepository,
	log *logger.Logger,
) *SignalHandler {
	return &SignalHandler{
		cfg:      cfg,
		symbol:   symbol,
		provider: p,
		scorer:   scorer,
		engine:   engine,
		repo:     repo,
		logger:   log,
	}
}

// Latest computes and returns today's valuation record
// GET /api/signal/latest?symbol=TSLA
func (h *SignalHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := h.symbolParam(r)

	bars, err := h.provider.DailyBars(ctx, symbol, h.cfg.Data.LookbackDays)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch bars")
		respondError(w, http.StatusBadGateway, "Market data unavailable")
		return
	}

	fundamentals, err := h.provider.Fundamentals(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).Warn("Fundamentals unavailable")
	}

	rec, err := h.scorer.Score(symbol, bars, fundamentals)
	if err != nil {
		var insufficient *contracts.InsufficientHistoryError
		if errors.As(err, &insufficient) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).Error("Scoring failed")
		respondError(w, http.StatusInternalServerError, "Scoring failed")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// History returns the last N stored records
// GET /api/signal/history?symbol=TSLA&n=10
func (h *SignalHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "No database configured")
		return
	}

	symbol := h.symbolParam(r)
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}

	records, err := h.repo.LastN(r.Context(), symbol, n)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load records")
		respondError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"count":   len(records),
		"records": records,
	})
}

// backtestRequest is the POST /api/backtest payload
type backtestRequest struct {
	Symbol       string `json:"symbol"`
	LookbackDays int    `json:"lookback_days"`
}

// Backtest replays signals over the requested window
// POST /api/backtest
func (h *SignalHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Symbol == "" {
		req.Symbol = h.symbol
	}
	if req.LookbackDays <= 0 {
		req.LookbackDays = h.cfg.Data.LookbackDays
	}

	bars, err := h.provider.DailyBars(ctx, req.Symbol, req.LookbackDays)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch bars")
		respondError(w, http.StatusBadGateway, "Market data unavailable")
		return
	}

	records, err := h.scorer.Replay(req.Symbol, bars)
	if err != nil {
		h.logger.WithError(err).Error("Signal replay failed")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.engine.Run(req.Symbol, records, bars)
	if err != nil {
		h.logger.WithError(err).Error("Backtest failed")
		respondError(w, http.StatusInternalServerError, "Backtest failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *SignalHandler) symbolParam(r *http.Request) string {
	if s := r.URL.Query().Get("symbol"); s != "" {
		return s
	}
	return h.symbol
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
