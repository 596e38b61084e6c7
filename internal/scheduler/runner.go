package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"MarketPulse/internal/analyzer"
	"MarketPulse/internal/discovery"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/predictor"
)

// ErrEmptyReport means a market produced neither index nor stock data.
var ErrEmptyReport = errors.New("no index or sector data")

// Settings sizes the sections of a report.
type Settings struct {
	TopStocks     int
	PredictTop    int
	DiscoveryTopN int
}

// RunOptions selects what one run produces.
type RunOptions struct {
	// Quick analyzes indices only.
	Quick bool
	// Discovery scans outside the watchlist. Ignored in quick mode.
	Discovery bool
}

// Runner drives the per-market pipeline and hands each report to the Reporter.
type Runner struct {
	Analyzer  *analyzer.Analyzer
	Predictor *predictor.Predictor
	Finder    *discovery.Finder
	Reporter  notifier.Reporter
	Metrics   *metrics.Metrics
	Settings  Settings
}

// RunAnalysis builds and sends a report for each market in order. Markets are
// isolated: a failed market gets a failure notice and the next one still
// runs. The returned error joins every market's failure.
func (r *Runner) RunAnalysis(ctx context.Context, markets []model.Market, opts RunOptions) error {
	var errs []error
	for _, m := range markets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runMarket(ctx, m, opts); err != nil {
			errs = append(errs, fmt.Errorf("market %s: %w", m.Key, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runMarket(ctx context.Context, m model.Market, opts RunOptions) error {
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", uuid.NewString()).
		Str("market", m.Key).
		Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	logger.Info().Bool("quick", opts.Quick).Msg("market run started")
	report, err := r.BuildReport(ctx, m, opts)
	if err == nil {
		err = r.Reporter.SendReport(ctx, *report)
	}
	r.Metrics.ObserveRun(m.Key, time.Since(start), err)

	if err != nil {
		logger.Error().Err(err).Msg("market run failed")
		if ctx.Err() == nil {
			if nerr := r.Reporter.SendFailure(ctx, m.Name, err); nerr != nil {
				logger.Error().Err(nerr).Msg("failure notice not delivered")
			}
		}
		return err
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("market run finished")
	return nil
}

// BuildReport runs the analysis pipeline for one market.
func (r *Runner) BuildReport(ctx context.Context, m model.Market, opts RunOptions) (*model.MarketReport, error) {
	logger := zerolog.Ctx(ctx)
	report := &model.MarketReport{
		MarketKey:   m.Key,
		MarketName:  m.Name,
		GeneratedAt: time.Now(),
		Quick:       opts.Quick,
	}

	primaryRef, hasPrimary := m.PrimaryIndex()
	primaryAt := -1
	for _, ref := range m.Indices {
		idx, err := r.Analyzer.AnalyzeIndex(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn().Str("symbol", ref.Symbol).Err(err).Msg("index skipped")
			continue
		}
		report.Indices = append(report.Indices, *idx)
		if hasPrimary && ref.Symbol == primaryRef.Symbol {
			primaryAt = len(report.Indices) - 1
		}
	}
	if opts.Quick {
		if len(report.Indices) == 0 {
			return nil, ErrEmptyReport
		}
		return report, nil
	}

	sectors, err := r.Analyzer.ScanAll(ctx, m.Sectors)
	if err != nil {
		return nil, err
	}
	report.Sectors = sectors
	if len(report.Indices) == 0 && !anyStocks(sectors) {
		return nil, ErrEmptyReport
	}
	var primary *model.IndexAnalysis
	if primaryAt >= 0 {
		primary = &report.Indices[primaryAt]
	}

	outlook := predictor.Outlook(m.Name, primary, sectors)
	report.Outlook = &outlook
	report.TopStocks = analyzer.TopStocks(sectors, r.Settings.TopStocks)
	report.BuySignals = analyzer.BuySignals(sectors)
	report.Predictions = r.predict(ctx, report.TopStocks)

	if opts.Discovery && r.Finder != nil {
		picks, err := r.Finder.Discover(ctx, m, r.Settings.DiscoveryTopN)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			logger.Warn().Err(err).Msg("discovery failed")
		default:
			report.Discovered = picks
		}
	}
	return report, nil
}

// predict forecasts the strongest stocks, skipping any that cannot be predicted.
func (r *Runner) predict(ctx context.Context, top []model.StockAnalysis) []model.PricePrediction {
	if r.Predictor == nil {
		return nil
	}
	n := r.Settings.PredictTop
	if n > len(top) {
		n = len(top)
	}
	var out []model.PricePrediction
	for _, s := range top[:n] {
		p, err := r.Predictor.PredictStock(ctx, s.Symbol, s.Name)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Str("symbol", s.Symbol).Err(err).Msg("prediction skipped")
			continue
		}
		out = append(out, *p)
	}
	return out
}

func anyStocks(sectors []model.SectorAnalysis) bool {
	for _, s := range sectors {
		if s.StockCount > 0 {
			return true
		}
	}
	return false
}
