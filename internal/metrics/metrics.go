package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the analysis pipeline.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec // labels: symbol
	AnalysisFailures *prometheus.CounterVec // labels: symbol, stage
	TradesTotal      *prometheus.CounterVec // labels: symbol
	SkippedSignals   *prometheus.CounterVec // labels: symbol
	ModelUnavailable *prometheus.CounterVec // labels: symbol
	AnalysisDur      prometheus.Histogram
	LastTotalReturn  *prometheus.GaugeVec   // labels: symbol
	SignalConfidence *prometheus.GaugeVec   // labels: symbol, action
}

// NewMetrics registers all metrics with reg, or the default registerer when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_analyses_total",
			Help: "Completed symbol analyses",
		}, []string{"symbol"}),
		AnalysisFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_analysis_failures_total",
			Help: "Failed symbol analyses by pipeline stage",
		}, []string{"symbol", "stage"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_backtest_trades_total",
			Help: "Simulated trades across backtest runs",
		}, []string{"symbol"}),
		SkippedSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_backtest_skipped_signals_total",
			Help: "Buy signals skipped for lack of an executable next bar",
		}, []string{"symbol"}),
		ModelUnavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendscope_model_unavailable_total",
			Help: "Analyses that ran without a classifier",
		}, []string{"symbol"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendscope_analysis_duration_seconds",
			Help:    "Wall time of one symbol analysis",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		LastTotalReturn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trendscope_backtest_total_return",
			Help: "Total return of the latest backtest",
		}, []string{"symbol"}),
		SignalConfidence: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trendscope_signal_confidence",
			Help: "Confidence of the latest live signal",
		}, []string{"symbol", "action"}),
	}

	reg.MustRegister(
		m.AnalysesTotal, m.AnalysisFailures, m.TradesTotal, m.SkippedSignals,
		m.ModelUnavailable, m.AnalysisDur, m.LastTotalReturn, m.SignalConfidence,
	)
	return m
}

// HealthStatus tracks the scheduler's most recent batch.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt   time.Time `json:"started_at"`
	LastRunAt   time.Time `json:"last_run_at"`
	LastRunOK   int       `json:"last_run_ok"`
	LastRunFail int       `json:"last_run_failed"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// SetLastRun stores the outcome of a batch.
func (h *HealthStatus) SetLastRun(at time.Time, ok, failed int) {
	h.mu.Lock()
	h.LastRunAt = at
	h.LastRunOK = ok
	h.LastRunFail = failed
	h.mu.Unlock()
}

// ServeHTTP reports 503 when the last batch had no successful symbol.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	status := struct {
		Status      string `json:"status"`
		StartedAt   string `json:"started_at"`
		LastRunAt   string `json:"last_run_at,omitempty"`
		LastRunOK   int    `json:"last_run_ok"`
		LastRunFail int    `json:"last_run_failed"`
	}{
		Status:      "ok",
		StartedAt:   h.StartedAt.Format(time.RFC3339),
		LastRunOK:   h.LastRunOK,
		LastRunFail: h.LastRunFail,
	}
	if !h.LastRunAt.IsZero() {
		status.LastRunAt = h.LastRunAt.Format(time.RFC3339)
	}
	degraded := !h.LastRunAt.IsZero() && h.LastRunOK == 0 && h.LastRunFail > 0
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if degraded {
		status.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server. A nil gatherer serves the
// default registry.
func NewServer(addr string, gatherer prometheus.Gatherer, health *HealthStatus) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the server's routes.
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

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
