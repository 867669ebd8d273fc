package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/valuator/internal/history"
	"github.com/wonny/valuator/internal/provider"
	"github.com/wonny/valuator/internal/scoring"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/logger"
)

// DailySignalJob fetches the latest history, scores it and persists the
// resulting record. Runs once per day after the market close.
type DailySignalJob struct {
	symbol   string
	cfg      *strategyconfig.Config
	provider provider.MarketDataProvider
	scorer   *scoring.Scorer
	repo     *history.RecordRepository // nil when no database is configured
	logger   *logger.Logger
}

func NewDailySignalJob(
	symbol string,
	cfg *strategyconfig.Config,
	p provider.MarketDataProvider,
	scorer *scoring.Scorer,
	repo *history.RecordRepository,
	log *logger.Logger,
) *DailySignalJob {
	return &DailySignalJob{
		symbol:   symbol,
		cfg:      cfg,
		provider: p,
		scorer:   scorer,
		repo:     repo,
		logger:   log.Component("daily_signal"),
	}
}

func (j *DailySignalJob) Name() string {
	return "daily_signal"
}

// Schedule: 22:30 UTC weekdays, after the US close
func (j *DailySignalJob) Schedule() string {
	return "0 30 22 * * 1-5"
}

func (j *DailySignalJob) Run(ctx context.Context) error {
	bars, err := j.provider.DailyBars(ctx, j.symbol, j.cfg.Data.LookbackDays)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}

	fundamentals, err := j.provider.Fundamentals(ctx, j.symbol)
	if err != nil {
		// scoring degrades gracefully without fundamentals
		j.logger.WithError(err).Warn("fundamentals unavailable, scoring without them")
	}

	rec, err := j.scorer.Score(j.symbol, bars, fundamentals)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"symbol":     j.symbol,
		"date":       rec.Date.Format("2006-01-02"),
		"signal":     string(rec.Signal),
		"confidence": string(rec.Confidence),
		"score":      rec.CompositeScore,
	}).Info("Daily signal computed")

	if j.repo != nil {
		if err := j.repo.Save(ctx, rec); err != nil {
			return fmt.Errorf("persist record: %w", err)
		}
	}
	return nil
}
