package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
	"MarketPulse/internal/strategy"
)

// Minimum bar counts.
const (
	MinStockBars = calculator.MediumWindow
	MinIndexBars = calculator.LongWindow
)

var (
	// ErrInsufficientData is returned when a series is shorter than the required lookback.
	ErrInsufficientData = calculator.ErrInsufficientData
	// ErrNoData is returned when the data collaborator has nothing for a symbol.
	ErrNoData = collector.ErrNoData
)

// DefaultWorkers bounds concurrent stock analyses within one sector.
const DefaultWorkers = 5

// Analyzer scores indices, stocks and sectors from fetched price bars.
type Analyzer struct {
	fetcher     collector.Fetcher
	metrics     *metrics.Metrics
	workers     int
	stockPeriod string
	indexPeriod string
	interval    string
}

type Option func(*Analyzer)

// WithWorkers sets the sector fan-out bound.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithPeriods sets the lookback periods requested for stocks and indices.
func WithPeriods(stock, index string) Option {
	return func(a *Analyzer) {
		if stock != "" {
			a.stockPeriod = stock
		}
		if index != "" {
			a.indexPeriod = index
		}
	}
}

func New(f collector.Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:     f,
		workers:     DefaultWorkers,
		stockPeriod: "3mo",
		indexPeriod: "3mo",
		interval:    "1d",
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Fetcher exposes the data collaborator for components layered on the analyzer.
func (a *Analyzer) Fetcher() collector.Fetcher { return a.fetcher }

// AnalyzeIndex scores an index. It needs at least 60 bars.
func (a *Analyzer) AnalyzeIndex(ctx context.Context, ref model.IndexRef) (*model.IndexAnalysis, error) {
	bars, err := a.fetcher.FetchBars(ctx, ref.Symbol, a.indexPeriod, a.interval)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", ref.Symbol, err)
	}
	res, err := ScoreIndex(ref, bars)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("symbol", ref.Symbol).Err(err).Msg("index skipped")
		return nil, err
	}
	return res, nil
}

// ScoreIndex computes an index analysis from bars.
func ScoreIndex(ref model.IndexRef, bars []model.OHLCV) (*model.IndexAnalysis, error) {
	if len(bars) < MinIndexBars {
		return nil, fmt.Errorf("index %s: %d bars, need %d: %w", ref.Symbol, len(bars), MinIndexBars, ErrInsufficientData)
	}
	snap, err := calculator.Snapshot(bars, calculator.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", ref.Symbol, err)
	}
	trend := strategy.ClassifyTrend(snap)
	name := ref.Name
	if name == "" {
		name = ref.Symbol
	}
	return &model.IndexAnalysis{
		Symbol:            ref.Symbol,
		Name:              name,
		IndicatorSnapshot: snap,
		Trend:             trend,
		Summary:           strategy.IndexSummary(trend, snap),
	}, nil
}

// AnalyzeStock scores one stock. The display name comes from the metadata
// collaborator and falls back to the symbol.
func (a *Analyzer) AnalyzeStock(ctx context.Context, symbol, sector string) (*model.StockAnalysis, error) {
	bars, err := a.fetcher.FetchBars(ctx, symbol, a.stockPeriod, a.interval)
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", symbol, err)
	}
	res, err := ScoreStock(symbol, sector, bars)
	if err != nil {
		return nil, err
	}
	res.Name = a.lookupName(ctx, symbol)
	return res, nil
}

func (a *Analyzer) lookupName(ctx context.Context, symbol string) string {
	name, err := a.fetcher.FetchName(ctx, symbol)
	if err != nil || name == "" {
		if err != nil && !errors.Is(err, ErrNoData) {
			zerolog.Ctx(ctx).Debug().Str("symbol", symbol).Err(err).Msg("name lookup failed")
		}
		return symbol
	}
	return name
}

// ScoreStock computes a stock analysis from bars. It needs at least 20 bars;
// with fewer than 61 the long average spans every bar but the first.
func ScoreStock(symbol, sector string, bars []model.OHLCV) (*model.StockAnalysis, error) {
	if len(bars) < MinStockBars {
		return nil, fmt.Errorf("stock %s: %d bars, need %d: %w", symbol, len(bars), MinStockBars, ErrInsufficientData)
	}
	long := calculator.LongWindow
	if len(bars)-1 < long {
		long = len(bars) - 1
	}
	snap, err := calculator.Snapshot(bars, long)
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", symbol, err)
	}

	trend := strategy.ClassifyTrend(snap)
	buy := strategy.BuySignal(snap)
	return &model.StockAnalysis{
		Symbol:         symbol,
		Name:           symbol,
		Sector:         sector,
		CurrentPrice:   snap.CurrentPrice,
		PriceChangePct: snap.PriceChangePct,
		VolumeRatio:    snap.VolumeRatio,
		RSI:            snap.RSI,
		TrendScore:     trend.Score,
		StrengthScore:  strategy.StrengthScore(snap, trend.Score),
		BuySignal:      buy,
		Note:           strategy.StockNote(snap, trend.Label, buy),
	}, nil
}
