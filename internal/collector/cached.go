package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
)

// DefaultCacheTTL is how long cached bars are served before refetching.
const DefaultCacheTTL = 15 * time.Minute

// CachedFetcher serves bars from a Store when fresh and memoizes names for the
// life of the process. Store failures degrade to a direct fetch.
type CachedFetcher struct {
	next    Fetcher
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics

	names sync.Map // symbol -> string
}

func NewCachedFetcher(next Fetcher, store cache.Store, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{next: next, store: store, ttl: ttl, metrics: m}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func (c *CachedFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error) {
	key := cache.Key(symbol, period, interval)

	bars, ok, err := c.store.Get(ctx, key, c.ttl)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("bar cache read failed")
	}
	c.metrics.ObserveCache(ok)
	if ok {
		log.Debug().Str("key", key).Int("bars", len(bars)).Msg("bar cache hit")
		return bars, nil
	}

	bars, err = c.next.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, bars); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("bar cache write failed")
	}
	return bars, nil
}

func (c *CachedFetcher) FetchName(ctx context.Context, symbol string) (string, error) {
	if v, ok := c.names.Load(symbol); ok {
		return v.(string), nil
	}
	name, err := c.next.FetchName(ctx, symbol)
	if err != nil {
		return "", err
	}
	c.names.Store(symbol, name)
	return name, nil
}
