package commands

import (
	"fmt"
	"os"

	"github.com/wonny/valuator/internal/history"
	"github.com/wonny/valuator/internal/provider"
	"github.com/wonny/valuator/internal/provider/yahoo"
	"github.com/wonny/valuator/internal/scoring"
	"github.com/wonny/valuator/internal/strategyconfig"
	"github.com/wonny/valuator/pkg/config"
	"github.com/wonny/valuator/pkg/database"
	"github.com/wonny/valuator/pkg/httputil"
	"github.com/wonny/valuator/pkg/logger"
	"github.com/wonny/valuator/pkg/redis"
)

// app bundles the wired dependencies shared by the subcommands
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	provider provider.MarketDataProvider
	db       *database.DB               // nil without DATABASE_URL
	repo     *history.RecordRepository  // nil without DATABASE_URL
	redis    *redis.Client
	symbol   string
}

// newApp loads configuration and wires the dependency graph
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	strategy, err := loadStrategy(cfg)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	httpClient := httputil.New(log.Component("http"), cfg.Provider.Timeout).
		WithRateLimit(cfg.Provider.RatePerSec)
	yahooClient := yahoo.NewClient(httpClient, log, cfg.Provider.ChartBaseURL, cfg.Provider.StatsBaseURL)

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		redisClient = nil
	}

	var p provider.MarketDataProvider = yahooClient
	if redisClient != nil && redisClient.Enabled() {
		cache := redis.NewCache(redisClient, "valuator")
		p = provider.NewCached(yahooClient, cache, log)
	}

	a := &app{
		cfg:      cfg,
		strategy: strategy,
		log:      log,
		provider: p,
		redis:    redisClient,
		symbol:   cfg.DefaultSymbol,
	}
	if symbolFlag != "" {
		a.symbol = symbolFlag
	}
	return a, nil
}

// newScorer builds a scorer bound to the app's strategy parameters
func newScorer(a *app) *scoring.Scorer {
	return scoring.New(a.strategy, a.log)
}

// withDatabase connects the pool and the record repository. Optional: the
// scoring pipeline runs without persistence.
func (a *app) withDatabase() error {
	if !a.cfg.HasDatabase() {
		return nil
	}
	db, err := database.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.db = db
	a.repo = history.NewRecordRepository(db.Pool)
	return nil
}

// close releases pooled resources
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// loadStrategy resolves the strategy config: --strategy flag, then the
// configured path, then the built-in defaults.
func loadStrategy(cfg *config.Config) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyConfigPath
	}
	if path == "" {
		return strategyconfig.Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if strategyFile != "" {
			return nil, fmt.Errorf("strategy file not found: %s", path)
		}
		// configured default path missing: fall back to built-ins
		return strategyconfig.Default(), nil
	}

	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return strategy, nil
}
