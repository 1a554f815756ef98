package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CheckIns           *prometheus.CounterVec
	CheckOuts          *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	AuditAppendFailed  prometheus.Counter
	RequestDurationSec *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_check_ins_total",
			Help: "Total visitor check-ins by mode (staff, self).",
		}, []string{"mode"}),
		CheckOuts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_check_outs_total",
			Help: "Total visitor check-outs by mode (staff, force, self).",
		}, []string{"mode"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_logins_total",
			Help: "Total staff login attempts by outcome (success, failure).",
		}, []string{"outcome"}),
		AuditAppendFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_audit_append_failures_total",
			Help: "Audit entries that could not be persisted (best-effort policy).",
		}),
		RequestDurationSec: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatehouse_http_request_duration_seconds",
			Help:    "HTTP request latency by path and method.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
	}
}

// RecordCheckIn increments the check-in counter for the given mode.
func (m *Metrics) RecordCheckIn(mode string) {
	if m == nil {
		return
	}
	m.CheckIns.WithLabelValues(mode).Inc()
}

// RecordCheckOut increments the check-out counter for the given mode.
func (m *Metrics) RecordCheckOut(mode string) {
	if m == nil {
		return
	}
	m.CheckOuts.WithLabelValues(mode).Inc()
}

// RecordLogin increments the login counter for the given outcome.
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// RecordAuditAppendFailure counts a swallowed audit-append error.
func (m *Metrics) RecordAuditAppendFailure() {
	if m == nil {
		return
	}
	m.AuditAppendFailed.Inc()
}

// Latency is chi middleware observing request duration per route.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		m.RequestDurationSec.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
