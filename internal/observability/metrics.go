// Package observability provides Prometheus metrics for evaluation runs.
//
// shouldi is a batch CLI, so metrics are not scraped; the install command
// writes them to a node-exporter textfile when --metrics-textfile is set.
//
// All methods are safe on a nil *Metrics, which records nothing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "shouldi"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Verdict label values.
const (
	VerdictAccept = "accept"
	VerdictReject = "reject"
	VerdictError  = "error"
)

// Metrics holds the counters and histograms for one registry.
type Metrics struct {
	// OperationsTotal counts operation runs.
	// Labels: operation, status (success, error)
	OperationsTotal *prometheus.CounterVec

	// OperationDurationSeconds measures operation latency.
	// Labels: operation
	OperationDurationSeconds *prometheus.HistogramVec

	// ContextsTotal counts evaluation contexts by outcome.
	// Labels: status (success, error)
	ContextsTotal *prometheus.CounterVec

	// VerdictsTotal counts install verdicts.
	// Labels: verdict (accept, reject, error)
	VerdictsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on reg.
// Panics if called twice with the same registry (duplicate registration).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total operation runs by operation and status",
			},
			[]string{"operation", "status"},
		),
		OperationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Operation run time in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"operation"},
		),
		ContextsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "contexts_total",
				Help:      "Total evaluation contexts by status",
			},
			[]string{"status"},
		),
		VerdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "verdicts_total",
				Help:      "Total install verdicts by outcome",
			},
			[]string{"verdict"},
		),
	}
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// ObserveOperation records one operation run.
func (m *Metrics) ObserveOperation(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.OperationDurationSeconds.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveContext records the outcome of one evaluation context.
func (m *Metrics) ObserveContext(err error) {
	if m == nil {
		return
	}
	m.ContextsTotal.WithLabelValues(status(err)).Inc()
}

// ObserveVerdict records one verdict label (VerdictAccept, VerdictReject
// or VerdictError).
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.VerdictsTotal.WithLabelValues(verdict).Inc()
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
