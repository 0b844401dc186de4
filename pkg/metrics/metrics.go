// Package metrics exposes Prometheus instrumentation for the bank.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BankMetrics counts instruction executions per program and tracks their
// latency.
type BankMetrics struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewBankMetrics creates the bank metric set on a private registry.
func NewBankMetrics() *BankMetrics {
	registry := prometheus.NewRegistry()

	executions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rewardpool",
		Subsystem: "bank",
		Name:      "executions_total",
		Help:      "Instruction executions by program and outcome.",
	}, []string{"program", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rewardpool",
		Subsystem: "bank",
		Name:      "execution_duration_seconds",
		Help:      "Instruction execution latency by program.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"program"})

	registry.MustRegister(executions, duration)

	return &BankMetrics{
		registry:   registry,
		executions: executions,
		duration:   duration,
	}
}

// ObserveExecution records one instruction execution.
func (m *BankMetrics) ObserveExecution(program string, elapsed time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.executions.WithLabelValues(program, status).Inc()
	m.duration.WithLabelValues(program).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler serving the metric set in Prometheus
// text format.
func (m *BankMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server for the metric set on addr. It blocks until
// the server stops.
func (m *BankMetrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
