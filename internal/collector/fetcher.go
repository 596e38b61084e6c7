package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"MarketPulse/internal/model"
)

var (
	// ErrNoData means the provider returned no usable bars or metadata for a symbol.
	ErrNoData = errors.New("no data")
	// ErrUnavailable means the upstream provider is failing and calls are being refused.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Fetcher supplies price bars and display names for symbols.
type Fetcher interface {
	// FetchBars returns bars for the lookback period (e.g. "3mo") at the bar
	// interval (e.g. "1d"), oldest first with unique timestamps.
	FetchBars(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error)
	// FetchName returns the instrument's display name.
	FetchName(ctx context.Context, symbol string) (string, error)
	Name() string
}

// normalizeBars drops empty bars, sorts ascending and keeps the last bar per timestamp.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0 {
			continue // holidays and halted sessions
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(b.Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}

// PeriodStart converts a lookback period such as "3mo" into a start time before now.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "5d":
		return now.AddDate(0, 0, -5), nil
	case "1mo":
		return now.AddDate(0, -1, 0), nil
	case "3mo":
		return now.AddDate(0, -3, 0), nil
	case "6mo":
		return now.AddDate(0, -6, 0), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	case "2y":
		return now.AddDate(-2, 0, 0), nil
	case "5y":
		return now.AddDate(-5, 0, 0), nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported period %q", period)
	}
}
