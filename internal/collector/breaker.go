package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
)

// BreakerTripAfter is the number of consecutive upstream failures that opens the breaker.
const BreakerTripAfter = 5

// BreakerFetcher isolates a failing upstream. While the breaker is open every
// call fails fast with ErrUnavailable. Missing data for one symbol does not
// count as an upstream failure.
type BreakerFetcher struct {
	next    Fetcher
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewBreakerFetcher(next Fetcher, cooldown time.Duration, m *metrics.Metrics) *BreakerFetcher {
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	st := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("upstream breaker state changed")
			m.SetBreakerState(name, breakerGauge(to))
		},
	}
	return &BreakerFetcher{next: next, cb: gobreaker.NewCircuitBreaker(st), metrics: m}
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (b *BreakerFetcher) Name() string { return b.next.Name() }

// State reports the breaker's current state.
func (b *BreakerFetcher) State() gobreaker.State { return b.cb.State() }

func (b *BreakerFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchBars(ctx, symbol, period, interval)
	})
	b.metrics.ObserveFetch(b.Name(), fetchResult(err))
	if err != nil {
		return nil, b.wrap(symbol, err)
	}
	return v.([]model.OHLCV), nil
}

func (b *BreakerFetcher) FetchName(ctx context.Context, symbol string) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchName(ctx, symbol)
	})
	if err != nil {
		return "", b.wrap(symbol, err)
	}
	return v.(string), nil
}

func (b *BreakerFetcher) wrap(symbol string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", b.Name(), symbol, ErrUnavailable)
	}
	return err
}

func fetchResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}
