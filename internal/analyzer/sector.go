package analyzer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"MarketPulse/internal/model"
	"MarketPulse/internal/strategy"
)

// TopStocksPerSector caps SectorAnalysis.TopStocks.
const TopStocksPerSector = 5

// ScanSector analyzes every member of a sector with at most a.workers
// analyses in flight. Members that fail are logged and left out of the
// statistics; a sector with no survivors yields the neutral zero sentinel.
func (a *Analyzer) ScanSector(ctx context.Context, sector model.Sector) model.SectorAnalysis {
	start := time.Now()
	defer func() { a.metrics.ObserveSector(time.Since(start)) }()

	symbols := uniqueSymbols(sector.Symbols)
	logger := zerolog.Ctx(ctx)

	type result struct {
		idx      int
		analysis *model.StockAnalysis
	}
	sem := make(chan struct{}, a.workers)
	results := make(chan result, len(symbols))
	var wg sync.WaitGroup

	for i, sym := range symbols {
		wg.Add(1)
		go func(idx int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			res, err := a.AnalyzeStock(ctx, symbol, sector.Name)
			if err != nil {
				logger.Warn().Str("symbol", symbol).Str("sector", sector.Name).Err(err).Msg("stock skipped")
				a.metrics.ObserveStock(false)
				results <- result{idx: idx}
				return
			}
			a.metrics.ObserveStock(true)
			results <- result{idx: idx, analysis: res}
		}(i, sym)
	}
	wg.Wait()
	close(results)

	// Reassemble in scan order so ties rank by position in the sector.
	ordered := make([]*model.StockAnalysis, len(symbols))
	for r := range results {
		ordered[r.idx] = r.analysis
	}
	stocks := make([]model.StockAnalysis, 0, len(symbols))
	for _, s := range ordered {
		if s != nil {
			stocks = append(stocks, *s)
		}
	}

	out := Aggregate(sector.Name, stocks)
	logger.Debug().Str("sector", sector.Name).Int("stocks", out.StockCount).
		Float64("strength", out.StrengthScore).Msg("sector scanned")
	return out
}

// Aggregate reduces the surviving analyses of one sector, given in scan order.
func Aggregate(name string, stocks []model.StockAnalysis) model.SectorAnalysis {
	if len(stocks) == 0 {
		return model.SectorAnalysis{Name: name, Trend: model.Neutral}
	}

	var sumChange, sumStrength float64
	bullish := 0
	for _, s := range stocks {
		sumChange += s.PriceChangePct
		sumStrength += s.StrengthScore
		if s.TrendScore > 0 {
			bullish++
		}
	}
	n := float64(len(stocks))
	avgStrength := sumStrength / n

	top := append([]model.StockAnalysis(nil), stocks...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].StrengthScore > top[j].StrengthScore })
	if len(top) > TopStocksPerSector {
		top = top[:TopStocksPerSector]
	}

	return model.SectorAnalysis{
		Name:          name,
		AvgChangePct:  sumChange / n,
		StrengthScore: avgStrength,
		Trend:         strategy.SectorTrend(avgStrength),
		TopStocks:     top,
		StockCount:    len(stocks),
		BullishCount:  bullish,
	}
}

// ScanAll scans sectors one after another and ranks them by strength,
// strongest first. It stops early only when ctx is done.
func (a *Analyzer) ScanAll(ctx context.Context, sectors []model.Sector) ([]model.SectorAnalysis, error) {
	out := make([]model.SectorAnalysis, 0, len(sectors))
	for _, s := range sectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Info().Str("sector", s.Name).Int("symbols", len(s.Symbols)).Msg("scanning sector")
		out = append(out, a.ScanSector(ctx, s))
	}
	RankSectors(out)
	return out, nil
}

// RankSectors sorts sectors by strength descending, keeping input order on ties.
func RankSectors(sectors []model.SectorAnalysis) {
	sort.SliceStable(sectors, func(i, j int) bool { return sectors[i].StrengthScore > sectors[j].StrengthScore })
}

// TopStocks returns up to n of the strongest stocks across the sectors' top
// lists, unique by symbol. The first occurrence in ranked order wins.
func TopStocks(sectors []model.SectorAnalysis, n int) []model.StockAnalysis {
	all := collectTop(sectors, func(model.StockAnalysis) bool { return true })
	seen := make(map[string]bool)
	out := make([]model.StockAnalysis, 0, n)
	for _, s := range all {
		if len(out) >= n {
			break
		}
		if seen[s.Symbol] {
			continue
		}
		seen[s.Symbol] = true
		out = append(out, s)
	}
	return out
}

// BuySignals returns every top-list entry flagged as a buy setup, strongest first.
// A stock listed in several sectors appears once per sector.
func BuySignals(sectors []model.SectorAnalysis) []model.StockAnalysis {
	return collectTop(sectors, func(s model.StockAnalysis) bool { return s.BuySignal })
}

func collectTop(sectors []model.SectorAnalysis, keep func(model.StockAnalysis) bool) []model.StockAnalysis {
	var all []model.StockAnalysis
	for _, sec := range sectors {
		for _, s := range sec.TopStocks {
			if keep(s) {
				all = append(all, s)
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].StrengthScore > all[j].StrengthScore })
	return all
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
