package cache

import (
	"context"
	"time"

	"MarketPulse/internal/model"
)

// NoopStore never caches. Used when no SQLite path is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) Get(context.Context, string, time.Duration) ([]model.OHLCV, bool, error) {
	return nil, false, nil
}
func (NoopStore) Put(context.Context, string, []model.OHLCV) error    { return nil }
func (NoopStore) Purge(context.Context, time.Duration) (int64, error) { return 0, nil }
func (NoopStore) Close() error                                        { return nil }
