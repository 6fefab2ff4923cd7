package metrics

import (
	"net/http"
	"strconv"

	"transaction-service/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements ports.Metrics. A nil *Prometheus is a valid no-op.
type Prometheus struct {
	TransactionsProcessed *prometheus.CounterVec
	PermanentFailures     *prometheus.CounterVec
	ReconcileAttempts     prometheus.Counter
	ReconcileFailures     prometheus.Counter
	ReconcilePermanent    prometheus.Counter
	CacheWarmedAccounts   prometheus.Counter
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry.
func New(registry *prometheus.Registry) *Prometheus {
	m := &Prometheus{
		TransactionsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_processed_total",
				Help: "Transactions processed, by type and outcome status.",
			},
			[]string{"type", "status"},
		),
		PermanentFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_permanent_failures_total",
				Help: "Transactions that exhausted their retry budget.",
			},
			[]string{"type"},
		),
		ReconcileAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciler_sweep_attempts_total",
				Help: "Retry sweep attempts.",
			},
		),
		ReconcileFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciler_sweep_failures_total",
				Help: "Retry sweep attempts that failed.",
			},
		),
		ReconcilePermanent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciler_sweep_permanent_failures_total",
				Help: "Ticks where every sweep attempt failed.",
			},
		),
		CacheWarmedAccounts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reconciler_cache_warmed_accounts_total",
				Help: "Accounts populated into the balance cache by warm-up.",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.TransactionsProcessed,
		m.PermanentFailures,
		m.ReconcileAttempts,
		m.ReconcileFailures,
		m.ReconcilePermanent,
		m.CacheWarmedAccounts,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func (m *Prometheus) TransactionProcessed(txType domain.TransactionType, status domain.TransactionStatus) {
	if m == nil {
		return
	}
	m.TransactionsProcessed.WithLabelValues(string(txType), string(status)).Inc()
}

func (m *Prometheus) PermanentFailure(txType domain.TransactionType) {
	if m == nil {
		return
	}
	m.PermanentFailures.WithLabelValues(string(txType)).Inc()
}

func (m *Prometheus) ReconcileAttempt() {
	if m == nil {
		return
	}
	m.ReconcileAttempts.Inc()
}

func (m *Prometheus) ReconcileFailure() {
	if m == nil {
		return
	}
	m.ReconcileFailures.Inc()
}

func (m *Prometheus) ReconcilePermanentFailure() {
	if m == nil {
		return
	}
	m.ReconcilePermanent.Inc()
}

func (m *Prometheus) CacheWarmed(accounts int) {
	if m == nil {
		return
	}
	m.CacheWarmedAccounts.Add(float64(accounts))
}

// ObserveHTTP records one served request.
func (m *Prometheus) ObserveHTTP(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(seconds)
}
