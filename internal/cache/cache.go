package cache

import (
	"context"
	"time"

	"MarketPulse/internal/model"
)

// Store caches fetched price bars by key. Entries older than maxAge are misses.
type Store interface {
	Get(ctx context.Context, key string, maxAge time.Duration) ([]model.OHLCV, bool, error)
	Put(ctx context.Context, key string, bars []model.OHLCV) error
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// Key builds the cache key for one fetch request.
func Key(symbol, period, interval string) string {
	return symbol + "_" + period + "_" + interval
}
