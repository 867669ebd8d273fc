package provider

import (
	"context"

	"github.com/wonny/valuator/internal/contracts"
	"github.com/wonny/valuator/pkg/logger"
	"github.com/wonny/valuator/pkg/redis"
)

// Cached wraps a MarketDataProvider with a Redis read-through cache. Cache
// errors degrade to a fetch from the source, never to a hard failure.
type Cached struct {
	source MarketDataProvider
	cache  *redis.Cache
	log    *logger.Logger
}

func NewCached(source MarketDataProvider, cache *redis.Cache, log *logger.Logger) *Cached {
	return &Cached{source: source, cache: cache, log: log.Component("provider_cache")}
}

func (c *Cached) DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error) {
	key := redis.BarsKey(symbol, lookbackDays)

	var cached []contracts.PriceBar
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).Warn("bars cache read failed")
	}
	if found && len(cached) > 0 {
		return cached, nil
	}

	bars, err := c.source.DailyBars(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, bars, redis.TTLDaily); err != nil {
		c.log.WithError(err).Warn("bars cache write failed")
	}
	return bars, nil
}

func (c *Cached) Fundamentals(ctx context.Context, symbol string) (contracts.FundamentalSnapshot, error) {
	key := redis.FundamentalsKey(symbol)

	var cached contracts.FundamentalSnapshot
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).Warn("fundamentals cache read failed")
	}
	if found {
		return cached, nil
	}

	snap, err := c.source.Fundamentals(ctx, symbol)
	if err != nil {
		return contracts.FundamentalSnapshot{}, err
	}

	if err := c.cache.Set(ctx, key, snap, redis.TTLIntraday); err != nil {
		c.log.WithError(err).Warn("fundamentals cache write failed")
	}
	return snap, nil
}
