package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"MarketPulse/internal/analyzer"
	"MarketPulse/internal/cache"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/config"
	"MarketPulse/internal/discovery"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
	"MarketPulse/internal/notifier"
	"MarketPulse/internal/predictor"
	"MarketPulse/internal/scheduler"
	"MarketPulse/internal/watchlist"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	store     cache.Store
	fetcher   collector.Fetcher
	watchlist *watchlist.Manager
	analyzer  *analyzer.Analyzer
	predictor *predictor.Predictor
	finder    *discovery.Finder
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(flags.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	var store cache.Store
	if cfg.Cache.SQLitePath != "" && cfg.Cache.TTL > 0 {
		ss, err := cache.NewSQLiteStore(cfg.Cache.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite cache failed, using noop")
			store = cache.NewNoopStore()
		} else {
			store = ss
			if n, err := ss.Purge(ctx, cfg.Cache.TTL); err != nil {
				log.Warn().Err(err).Msg("purge expired cache entries")
			} else if n > 0 {
				log.Debug().Int64("entries", n).Msg("purged expired cache entries")
			}
		}
	} else {
		store = cache.NewNoopStore()
	}

	fetcher, err := collector.New(collector.Options{
		Provider: cfg.DataSource.Provider,
		Proxy:    cfg.DataSource.Proxy,
		Timeout:  cfg.DataSource.Timeout,
		Store:    store,
		CacheTTL: cfg.Cache.TTL,
		Metrics:  m,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init data source: %w", err)
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	wl, err := watchlist.NewManager(cfg.Watchlist.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init watchlist: %w", err)
	}

	an := analyzer.New(fetcher,
		analyzer.WithWorkers(cfg.Analysis.Workers),
		analyzer.WithPeriods(cfg.Analysis.StockPeriod, cfg.Analysis.IndexPeriod),
		analyzer.WithMetrics(m),
	)
	screener := collector.NewScreener(cfg.DataSource.Proxy, cfg.DataSource.Timeout, 0)

	return &app{
		cfg:       cfg,
		registry:  reg,
		metrics:   m,
		store:     store,
		fetcher:   fetcher,
		watchlist: wl,
		analyzer:  an,
		predictor: predictor.New(fetcher, cfg.Analysis.PredictPeriod),
		finder:    discovery.New(an, screener, cfg.Discovery.Delay, m),
	}, nil
}

func (a *app) runner(rep notifier.Reporter) *scheduler.Runner {
	return &scheduler.Runner{
		Analyzer:  a.analyzer,
		Predictor: a.predictor,
		Finder:    a.finder,
		Reporter:  rep,
		Metrics:   a.metrics,
		Settings: scheduler.Settings{
			TopStocks:     a.cfg.Analysis.TopN,
			PredictTop:    a.cfg.Analysis.PredictTop,
			DiscoveryTopN: a.cfg.Discovery.TopN,
		},
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("close cache")
	}
}

// selectMarkets resolves a --market value against the watchlist.
func selectMarkets(wl model.Watchlist, key string) ([]model.Market, error) {
	if key == "all" {
		if len(wl.Markets) == 0 {
			return nil, fmt.Errorf("watchlist has no markets")
		}
		return wl.Markets, nil
	}
	m, ok := wl.Market(key)
	if !ok {
		keys := make([]string, 0, len(wl.Markets))
		for _, mk := range wl.Markets {
			keys = append(keys, mk.Key)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown market %q (have %v, or all)", key, keys)
	}
	return []model.Market{*m}, nil
}
