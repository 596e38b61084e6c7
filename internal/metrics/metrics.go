package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the Prometheus collectors for the analysis pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchTotal       *prometheus.CounterVec   // labels: source, result
	CacheTotal       *prometheus.CounterVec   // labels: result=hit|miss
	BreakerState     *prometheus.GaugeVec     // labels: name; 0=closed, 1=half-open, 2=open
	StocksTotal      *prometheus.CounterVec   // labels: result=ok|skipped
	SectorDuration   prometheus.Histogram     // one sector fan-out
	RunDuration      *prometheus.HistogramVec // labels: market
	RunsTotal        *prometheus.CounterVec   // labels: market, result
	DiscoveryPicks   *prometheus.GaugeVec     // labels: market
	NotificationsOut *prometheus.CounterVec   // labels: result
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketpulse_fetch_total",
			Help: "Price data fetches by source and result",
		}, []string{"source", "result"}),
		CacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketpulse_cache_total",
			Help: "Bar cache lookups by result",
		}, []string{"result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "marketpulse_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		StocksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketpulse_stocks_analyzed_total",
			Help: "Per-stock analyses by result",
		}, []string{"result"}),
		SectorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketpulse_sector_scan_duration_seconds",
			Help:    "Wall time of one sector scan",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketpulse_run_duration_seconds",
			Help:    "Wall time of one market report run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"market"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketpulse_runs_total",
			Help: "Market report runs by result",
		}, []string{"market", "result"}),
		DiscoveryPicks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "marketpulse_discovery_picks",
			Help: "Candidates returned by the last discovery scan",
		}, []string{"market"}),
		NotificationsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketpulse_notifications_total",
			Help: "Report messages delivered by result",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.FetchTotal, m.CacheTotal, m.BreakerState, m.StocksTotal,
			m.SectorDuration, m.RunDuration, m.RunsTotal, m.DiscoveryPicks,
			m.NotificationsOut,
		)
	}
	return m
}

func (m *Metrics) ObserveFetch(source, result string) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheTotal.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) ObserveStock(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.StocksTotal.WithLabelValues("ok").Inc()
	} else {
		m.StocksTotal.WithLabelValues("skipped").Inc()
	}
}

func (m *Metrics) ObserveSector(d time.Duration) {
	if m == nil {
		return
	}
	m.SectorDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(market string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(market).Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RunsTotal.WithLabelValues(market, result).Inc()
}

func (m *Metrics) SetDiscoveryPicks(market string, n int) {
	if m == nil {
		return
	}
	m.DiscoveryPicks.WithLabelValues(market).Set(float64(n))
}

func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.NotificationsOut.WithLabelValues("error").Inc()
	} else {
		m.NotificationsOut.WithLabelValues("ok").Inc()
	}
}

// Server exposes /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer serves the metrics gathered by g.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
