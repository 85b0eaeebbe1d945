package deck

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricDepth        = "deck_queue_depth"
	MetricRefills      = "deck_refills_total"
	MetricExhausted    = "deck_exhausted_total"
	MetricStaleBatches = "deck_stale_batches_discarded_total"
)

// Metrics contains Prometheus metrics for the deck engine.
// All operations are thread-safe.
type Metrics struct {
	depth        prometheus.Gauge
	refills      prometheus.Counter
	exhausted    prometheus.Counter
	staleBatches prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		depth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricDepth,
				Help: "Current number of cards in the deck queue",
			},
		),
		refills: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRefills,
				Help: "Total number of background refill fetches launched",
			},
		),
		exhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricExhausted,
				Help: "Total number of transitions into the exhausted state",
			},
		),
		staleBatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricStaleBatches,
				Help: "Total number of fetch batches discarded because a refresh outdated them",
			},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.depth,
		m.refills,
		m.exhausted,
		m.staleBatches,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// SetDepth records the current queue length.
func (m *Metrics) SetDepth(n int) {
	m.depth.Set(float64(n))
}

// IncRefills increments the refill counter.
func (m *Metrics) IncRefills() {
	m.refills.Inc()
}

// IncExhausted increments the exhausted-transition counter.
func (m *Metrics) IncExhausted() {
	m.exhausted.Inc()
}

// IncStaleBatches increments the discarded-batch counter.
func (m *Metrics) IncStaleBatches() {
	m.staleBatches.Inc()
}
