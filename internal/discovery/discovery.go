package discovery

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
)

// SectorLabel tags stocks surfaced by discovery.
const SectorLabel = "discovered"

// DefaultDelay spaces candidate analyses to respect the provider's rate limit.
const DefaultDelay = 300 * time.Millisecond

// Momentum filter thresholds. When fewer than minStrict candidates pass the
// strict volume filter the relaxed one is used instead.
const (
	strictVolumeRatio  = 1.5
	relaxedVolumeRatio = 1.0
	minStrict          = 3
)

// Scorer analyzes one stock.
type Scorer interface {
	AnalyzeStock(ctx context.Context, symbol, sector string) (*model.StockAnalysis, error)
}

// SymbolSource lists candidate symbols from a named screener.
type SymbolSource interface {
	Symbols(ctx context.Context, screenerID string) ([]string, error)
}

// Finder surfaces strong stocks outside the watchlist. Candidates are
// analyzed strictly one at a time, spaced by the limiter.
type Finder struct {
	scorer   Scorer
	screener SymbolSource
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
}

// New creates a Finder. screener may be nil when no market uses screeners.
func New(scorer Scorer, screener SymbolSource, delay time.Duration, m *metrics.Metrics) *Finder {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Finder{
		scorer:   scorer,
		screener: screener,
		limiter:  rate.NewLimiter(limit, 1),
		metrics:  m,
	}
}

// Discover runs the market's discovery source: its screeners when any are
// configured, otherwise its static universe.
func (f *Finder) Discover(ctx context.Context, market model.Market, topN int) ([]model.StockAnalysis, error) {
	var (
		picks []model.StockAnalysis
		err   error
	)
	exclude := market.Symbols()
	if len(market.Discovery.Screeners) > 0 && f.screener != nil {
		picks, err = f.FromScreeners(ctx, market.Discovery.Screeners, exclude, topN)
	} else {
		picks, err = f.FromUniverse(ctx, market.Discovery.Universe, exclude, topN)
	}
	if err != nil {
		return nil, err
	}
	f.metrics.SetDiscoveryPicks(market.Key, len(picks))
	return picks, nil
}

// FromUniverse scans the universe minus the watchlist, keeps the 2×topN
// strongest, and applies the momentum filter.
func (f *Finder) FromUniverse(ctx context.Context, universe []string, exclude map[string]bool, topN int) ([]model.StockAnalysis, error) {
	candidates := candidatesFrom(universe, exclude)
	if len(candidates) == 0 {
		zerolog.Ctx(ctx).Warn().Msg("discovery universe has no candidates outside the watchlist")
		return nil, nil
	}
	zerolog.Ctx(ctx).Info().Int("candidates", len(candidates)).Msg("scanning discovery universe")

	ranked, err := f.analyze(ctx, candidates, 2*topN)
	if err != nil {
		return nil, err
	}
	return FilterMomentum(ranked, topN), nil
}

// FromScreeners gathers candidates from each screener in order, drops the
// watchlist, caps the list at 2×topN, and returns the topN strongest.
// A failing screener is logged and skipped.
func (f *Finder) FromScreeners(ctx context.Context, screeners []string, exclude map[string]bool, topN int) ([]model.StockAnalysis, error) {
	logger := zerolog.Ctx(ctx)
	var all []string
	for _, id := range screeners {
		syms, err := f.screener.Symbols(ctx, id)
		if err != nil {
			logger.Warn().Str("screener", id).Err(err).Msg("screener failed")
			continue
		}
		all = append(all, syms...)
	}
	candidates := candidatesFrom(all, exclude)
	if len(candidates) == 0 {
		logger.Warn().Msg("screeners returned no candidates")
		return nil, nil
	}
	if len(candidates) > 2*topN {
		candidates = candidates[:2*topN]
	}
	logger.Info().Int("candidates", len(candidates)).Msg("scanning screener candidates")
	return f.analyze(ctx, candidates, topN)
}

// analyze scores candidates sequentially, keeps positive strength, and
// returns at most limit results, strongest first.
func (f *Finder) analyze(ctx context.Context, symbols []string, limit int) ([]model.StockAnalysis, error) {
	logger := zerolog.Ctx(ctx)
	var out []model.StockAnalysis
	for _, sym := range symbols {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := f.scorer.AnalyzeStock(ctx, sym, SectorLabel)
		if err != nil {
			logger.Warn().Str("symbol", sym).Err(err).Msg("discovery candidate skipped")
			continue
		}
		if res.StrengthScore > 0 {
			out = append(out, *res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StrengthScore > out[j].StrengthScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FilterMomentum keeps rising stocks on expanding volume. The strict volume
// threshold is relaxed only when it leaves fewer than three stocks.
func FilterMomentum(ranked []model.StockAnalysis, topN int) []model.StockAnalysis {
	filtered := momentum(ranked, strictVolumeRatio)
	if len(filtered) < minStrict {
		filtered = momentum(ranked, relaxedVolumeRatio)
	}
	if len(filtered) > topN {
		filtered = filtered[:topN]
	}
	return filtered
}

func momentum(stocks []model.StockAnalysis, minVolume float64) []model.StockAnalysis {
	var out []model.StockAnalysis
	for _, s := range stocks {
		if s.VolumeRatio > minVolume && s.PriceChangePct > 0 {
			out = append(out, s)
		}
	}
	return out
}

func candidatesFrom(symbols []string, exclude map[string]bool) []string {
	seen := make(map[string]bool, len(symbols))
	var out []string
	for _, s := range symbols {
		if s == "" || exclude[s] || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
