package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"MarketPulse/internal/model"
)

// FinanceFetcher implements Fetcher with the finance-go client library.
// The library has no context support, so cancellation is only checked between calls.
type FinanceFetcher struct {
	now func() time.Time
}

func NewFinanceFetcher() *FinanceFetcher {
	return &FinanceFetcher{now: time.Now}
}

func (f *FinanceFetcher) Name() string { return "financego" }

func (f *FinanceFetcher) FetchBars(ctx context.Context, symbol, period, interval string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := f.now()
	start, err := PeriodStart(period, end)
	if err != nil {
		return nil, err
	}

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.Interval(interval),
	}
	iter := chart.Get(params)

	var bars []model.OHLCV
	for iter.Next() {
		b := iter.Bar()
		o, _ := b.Open.Float64()
		h, _ := b.High.Float64()
		l, _ := b.Low.Float64()
		c, _ := b.Close.Float64()
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart %s: %w", symbol, err)
	}

	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("finance-go %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

func (f *FinanceFetcher) FetchName(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q, err := quote.Get(symbol)
	if err != nil {
		return "", fmt.Errorf("finance-go quote %s: %w", symbol, err)
	}
	if q == nil {
		return "", fmt.Errorf("finance-go quote %s: %w", symbol, ErrNoData)
	}
	if q.ShortName != "" {
		return q.ShortName, nil
	}
	if q.LongName != "" {
		return q.LongName, nil
	}
	return "", fmt.Errorf("finance-go name %s: %w", symbol, ErrNoData)
}
