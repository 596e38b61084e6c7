package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/analyzer"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/discovery"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/model"
	"MarketPulse/internal/predictor"
)

type fakeReporter struct {
	mu       sync.Mutex
	reports  []model.MarketReport
	failures []string
	sendErr  error
}

func (f *fakeReporter) SendReport(_ context.Context, r model.MarketReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReporter) SendFailure(_ context.Context, market string, _ error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, market)
	return nil
}

type staticScreener []string

func (s staticScreener) Symbols(context.Context, string) ([]string, error) { return s, nil }

func risingBars(n int) []model.OHLCV {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{
			Time: start.AddDate(0, 0, i), Open: c - 0.5, High: c * 1.01, Low: c * 0.99, Close: c,
			Volume: 1000 + 10*float64(i),
		}
	}
	return bars
}

func taiwan() model.Market {
	return model.Market{
		Key:     "tw",
		Name:    "Taiwan",
		Indices: []model.IndexRef{{Name: "TAIEX", Symbol: "^TWII"}},
		Sectors: []model.Sector{
			{Name: "Semis", Symbols: []string{"2330.TW", "2454.TW", "2303.TW"}},
			{Name: "Finance", Symbols: []string{"2881.TW", "2882.TW"}},
		},
		Discovery: model.DiscoveryConfig{Screeners: []string{"day_gainers"}},
	}
}

func newRunner(mock *collector.MockFetcher, rep *fakeReporter, m *metrics.Metrics) *Runner {
	a := analyzer.New(mock, analyzer.WithMetrics(m))
	return &Runner{
		Analyzer:  a,
		Predictor: predictor.New(mock, ""),
		Finder:    discovery.New(a, staticScreener{"3661.TW", "2330.TW"}, 0, m),
		Reporter:  rep,
		Metrics:   m,
		Settings:  Settings{TopStocks: 5, PredictTop: 2, DiscoveryTopN: 5},
	}
}

func TestBuildReport_Full(t *testing.T) {
	mock := collector.NewMockFetcher()
	mock.Bars["3661.TW"] = risingBars(120)
	r := newRunner(mock, &fakeReporter{}, nil)

	rep, err := r.BuildReport(context.Background(), taiwan(), RunOptions{Discovery: true})
	require.NoError(t, err)

	assert.Equal(t, "tw", rep.MarketKey)
	require.Len(t, rep.Indices, 1)
	assert.Equal(t, "TAIEX", rep.Indices[0].Name)
	require.Len(t, rep.Sectors, 2)
	assert.GreaterOrEqual(t, rep.Sectors[0].StrengthScore, rep.Sectors[1].StrengthScore)
	require.NotNil(t, rep.Outlook)
	assert.Equal(t, "Taiwan", rep.Outlook.MarketName)
	assert.Len(t, rep.TopStocks, 5)
	require.Len(t, rep.Predictions, 2)
	assert.Equal(t, rep.TopStocks[0].Symbol, rep.Predictions[0].Symbol)
	require.Len(t, rep.Discovered, 1, "watchlisted 2330.TW is excluded")
	assert.Equal(t, "3661.TW", rep.Discovered[0].Symbol)
	assert.Equal(t, discovery.SectorLabel, rep.Discovered[0].Sector)
}

func TestBuildReport_Quick(t *testing.T) {
	mock := collector.NewMockFetcher()
	r := newRunner(mock, &fakeReporter{}, nil)

	rep, err := r.BuildReport(context.Background(), taiwan(), RunOptions{Quick: true, Discovery: true})
	require.NoError(t, err)
	assert.Len(t, rep.Indices, 1)
	assert.Nil(t, rep.Outlook)
	assert.Empty(t, rep.Sectors)
	assert.Empty(t, rep.Discovered)
	assert.Zero(t, mock.Calls("2330.TW"), "quick mode fetches no stocks")
}

func TestBuildReport_IndexFailureStillReports(t *testing.T) {
	mock := collector.NewMockFetcher()
	mock.Errs["^TWII"] = errors.New("timeout")
	r := newRunner(mock, &fakeReporter{}, nil)

	rep, err := r.BuildReport(context.Background(), taiwan(), RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, rep.Indices)
	require.NotNil(t, rep.Outlook)
	assert.NotEmpty(t, rep.TopStocks)
}

func TestRunAnalysis_IsolatesMarkets(t *testing.T) {
	mock := collector.NewMockFetcher()
	broken := model.Market{
		Key: "us", Name: "United States",
		Indices: []model.IndexRef{{Name: "S&P 500", Symbol: "^GSPC"}},
		Sectors: []model.Sector{{Name: "Tech", Symbols: []string{"AAPL"}}},
	}
	mock.Errs["^GSPC"] = errors.New("upstream down")
	mock.Errs["AAPL"] = errors.New("upstream down")

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	rep := &fakeReporter{}
	r := newRunner(mock, rep, m)

	err := r.RunAnalysis(context.Background(), []model.Market{broken, taiwan()}, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyReport)
	assert.Contains(t, err.Error(), "market us")

	assert.Equal(t, []string{"United States"}, rep.failures)
	require.Len(t, rep.reports, 1)
	assert.Equal(t, "tw", rep.reports[0].MarketKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("us", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("tw", "ok")))
}

func TestRunAnalysis_SendFailure(t *testing.T) {
	rep := &fakeReporter{sendErr: errors.New("webhook 500")}
	r := newRunner(collector.NewMockFetcher(), rep, nil)

	err := r.RunAnalysis(context.Background(), []model.Market{taiwan()}, RunOptions{Quick: true})
	assert.ErrorContains(t, err, "webhook 500")
	assert.Equal(t, []string{"Taiwan"}, rep.failures)
}

func TestRunAnalysis_Canceled(t *testing.T) {
	rep := &fakeReporter{}
	r := newRunner(collector.NewMockFetcher(), rep, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.RunAnalysis(ctx, []model.Market{taiwan()}, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.reports)
	assert.Empty(t, rep.failures)
}

func TestScheduler_RegisterAll(t *testing.T) {
	wl := model.Watchlist{Markets: []model.Market{taiwan(), {Key: "us", Name: "United States"}}}
	source := func() model.Watchlist { return wl }
	r := newRunner(collector.NewMockFetcher(), &fakeReporter{}, nil)
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	s := NewScheduler(context.Background(), r, source, RunOptions{}, loc)
	require.NoError(t, s.RegisterAll(map[string]string{"tw": "0 30 14 * * 1-5", "us": "0 30 5 * * 2-6"}))
	assert.Len(t, s.Cron.Entries(), 2)

	s = NewScheduler(context.Background(), r, source, RunOptions{}, loc)
	assert.ErrorContains(t, s.RegisterAll(map[string]string{"tw": "not a cron"}), "register tw job")

	s = NewScheduler(context.Background(), r, source, RunOptions{}, loc)
	assert.ErrorContains(t, s.RegisterAll(map[string]string{"jp": "0 0 9 * * *"}), "unknown market")
}

func TestScheduler_RunMarketNow(t *testing.T) {
	wl := model.Watchlist{Markets: []model.Market{taiwan()}}
	rep := &fakeReporter{}
	r := newRunner(collector.NewMockFetcher(), rep, nil)
	s := NewScheduler(context.Background(), r, func() model.Watchlist { return wl }, RunOptions{Quick: true}, nil)

	s.RunMarketNow("tw")
	s.RunMarketNow("jp")
	require.Len(t, rep.reports, 1)
	assert.True(t, rep.reports[0].Quick)
}

func TestScheduler_StartStop(t *testing.T) {
	wl := model.Watchlist{Markets: []model.Market{taiwan()}}
	s := NewScheduler(context.Background(), newRunner(collector.NewMockFetcher(), &fakeReporter{}, nil),
		func() model.Watchlist { return wl }, RunOptions{}, time.UTC)
	require.NoError(t, s.RegisterAll(map[string]string{"tw": "0 0 0 1 1 *"}))
	s.Start()
	assert.False(t, s.Cron.Entries()[0].Next.IsZero())
	s.Stop()
}
