package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MarketPulse/internal/model"
)

// WatchlistSource returns the current watchlist snapshot.
type WatchlistSource func() model.Watchlist

// Scheduler manages the per-market cron jobs.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *Runner
	Watchlist WatchlistSource
	Options   RunOptions
	Ctx       context.Context
}

// NewScheduler creates a Scheduler whose job specs are evaluated in loc.
// Specs carry a leading seconds field.
func NewScheduler(ctx context.Context, runner *Runner, wl WatchlistSource, opts RunOptions, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner:    runner,
		Watchlist: wl,
		Options:   opts,
		Ctx:       ctx,
	}
}

// RegisterAll registers one job per market key. Jobs for markets absent
// from the watchlist are rejected.
func (s *Scheduler) RegisterAll(jobs map[string]string) error {
	wl := s.Watchlist()
	keys := make([]string, 0, len(jobs))
	for k := range jobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := wl.Market(key); !ok {
			return fmt.Errorf("register %s job: unknown market", key)
		}
		key := key
		if _, err := s.Cron.AddFunc(jobs[key], func() { s.RunMarketNow(key) }); err != nil {
			return fmt.Errorf("register %s job: %w", key, err)
		}
		zerolog.Ctx(s.Ctx).Info().Str("market", key).Str("spec", jobs[key]).Msg("job registered")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zerolog.Ctx(s.Ctx).Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zerolog.Ctx(s.Ctx).Info().Msg("scheduler stopped")
}

// RunMarketNow runs one market's report immediately against a fresh
// watchlist snapshot.
func (s *Scheduler) RunMarketNow(key string) {
	logger := zerolog.Ctx(s.Ctx)
	wl := s.Watchlist()
	m, ok := wl.Market(key)
	if !ok {
		logger.Error().Str("market", key).Msg("scheduled market no longer in watchlist")
		return
	}
	if err := s.Runner.RunAnalysis(s.Ctx, []model.Market{*m}, s.Options); err != nil {
		logger.Error().Err(err).Msg("scheduled run failed")
	}
}
