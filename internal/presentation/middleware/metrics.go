package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Metrics returns a middleware that collects Prometheus metrics
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.status)
			path := normalizePath(r)

			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// normalizePath returns the matched route pattern so that path parameters
// such as addresses do not explode label cardinality
func normalizePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// TxMetrics counts phase events and measures how long actions take to
// reach a terminal phase
type TxMetrics struct {
	mu      sync.Mutex
	started map[string]time.Time
	now     func() time.Time

	Phases   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewTxMetrics creates new transaction metrics registered with reg
func NewTxMetrics(reg prometheus.Registerer) *TxMetrics {
	factory := promauto.With(reg)
	return &TxMetrics{
		started: make(map[string]time.Time),
		now:     time.Now,
		Phases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_action_phases_total",
			Help: "Total number of phase events by action and phase",
		}, []string{"action", "phase"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_action_duration_seconds",
			Help:    "Time from start to confirmation or failure of an action",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"action", "outcome"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_actions_in_flight",
			Help: "Number of actions that have not reached a terminal phase",
		}),
	}
}

// Notify records one phase event
func (m *TxMetrics) Notify(ctx context.Context, event entities.PhaseEvent) {
	m.Phases.WithLabelValues(event.Action, string(event.Phase)).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if event.Phase == entities.PhaseStarted {
		m.started[event.ActionID] = m.now()
		m.InFlight.Inc()
		return
	}
	if !event.Phase.Terminal() {
		return
	}

	start, ok := m.started[event.ActionID]
	if !ok {
		return
	}
	delete(m.started, event.ActionID)
	m.InFlight.Dec()
	m.Duration.WithLabelValues(event.Action, string(event.Phase)).Observe(m.now().Sub(start).Seconds())
}
