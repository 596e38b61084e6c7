package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"MarketPulse/internal/cache"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without explicit bars get a deterministic synthetic series.
type MockFetcher struct {
	Bars  map[string][]model.OHLCV
	Names map[string]string
	Errs  map[string]error
	Count int // synthetic bar count, default 120

	mu    sync.Mutex
	calls map[string]int
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Bars:  map[string][]model.OHLCV{},
		Names: map[string]string{},
		Errs:  map[string]error{},
	}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, symbol, _, _ string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if len(bars) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		return bars, nil
	}
	count := m.Count
	if count <= 0 {
		count = 120
	}
	return generateMockBars(symbol, count), nil
}

func (m *MockFetcher) FetchName(_ context.Context, symbol string) (string, error) {
	if name, ok := m.Names[symbol]; ok {
		return name, nil
	}
	return "", fmt.Errorf("mock name %s: %w", symbol, ErrNoData)
}

// Calls reports how many times bars were requested for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// generateMockBars builds a drifting sine wave seeded by the symbol so each
// symbol gets its own stable shape.
func generateMockBars(symbol string, count int) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := float64(h.Sum32()%1000) / 1000

	base := 50 + seed*150
	drift := (seed - 0.5) * 0.004
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := base * (1 + drift*float64(i)) * (1 + 0.03*math.Sin(float64(i)/6+seed*10))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 * (1 + 0.5*math.Sin(float64(i)/3+seed)),
		}
	}
	return bars
}

// Options selects and wraps a price data provider.
type Options struct {
	Provider string // yahoo | financego | mock
	Proxy    string
	Timeout  time.Duration
	Store    cache.Store
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
}

// New builds the provider chain: cache, then circuit breaker, then the provider.
func New(opts Options) (Fetcher, error) {
	var provider Fetcher
	switch opts.Provider {
	case "", "yahoo":
		provider = NewYahooFetcher(opts.Proxy, opts.Timeout)
	case "financego":
		provider = NewFinanceFetcher()
	case "mock":
		provider = NewMockFetcher()
	default:
		return nil, fmt.Errorf("unknown data provider %q", opts.Provider)
	}

	var f Fetcher = NewBreakerFetcher(provider, 0, opts.Metrics)
	store := opts.Store
	if store == nil {
		store = cache.NewNoopStore()
	}
	return NewCachedFetcher(f, store, opts.CacheTTL, opts.Metrics), nil
}
