package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TerminalMetrics records outcomes of terminal operations (cart calls, searches, scans).
type TerminalMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	scans    *prometheus.CounterVec
}

// NewTerminalMetrics registers the terminal metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewTerminalMetrics(reg prometheus.Registerer) *TerminalMetrics {
	if reg == nil {
		return &TerminalMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "terminal_operation_duration_seconds",
		Help:    "Duration of terminal operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_operation_success",
		Help: "Successful terminal operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_operation_failure",
		Help: "Failed terminal operations.",
	}, []string{"operation"})
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_barcode_scans",
		Help: "Barcode lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, success, failure, scans)
	return &TerminalMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		scans:    scans,
	}
}

// Observe records duration and outcome of one operation started at start.
func (m *TerminalMetrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ObserveDuration(operation, time.Since(start))
	if err != nil {
		m.IncFailure(operation)
		return
	}
	m.IncSuccess(operation)
}

// ObserveDuration records the duration for the named operation.
func (m *TerminalMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *TerminalMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *TerminalMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncScan counts a barcode lookup outcome.
func (m *TerminalMetrics) IncScan(outcome string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
