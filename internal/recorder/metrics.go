package recorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// Metrics names as constants for consistency.
const (
	MetricDecisions     = "deck_decisions_total"
	MetricWriteFailures = "deck_decision_write_failures_total"
)

// Metrics contains Prometheus metrics for decision recording.
// All operations are thread-safe.
type Metrics struct {
	decisions     *prometheus.CounterVec
	writeFailures prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDecisions,
				Help: "Total number of committed swipe decisions by action",
			},
			[]string{"action"},
		),
		writeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricWriteFailures,
				Help: "Total number of decision writes that failed and were dropped",
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.decisions,
		m.writeFailures,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncDecisions increments the decision counter for the given action.
func (m *Metrics) IncDecisions(action viewed.Action) {
	m.decisions.WithLabelValues(string(action)).Inc()
}

// IncWriteFailures increments the dropped-write counter.
func (m *Metrics) IncWriteFailures() {
	m.writeFailures.Inc()
}
