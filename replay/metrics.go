package replay

import (
	"time"

	"github.com/dargueta/diskalloc"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts replayed operations and measures how long they took.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the replay metrics and registers them with `registerer`.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diskalloc",
				Subsystem: "replay",
				Name:      "operations_total",
				Help:      "Number of replayed operations, by strategy, operation and outcome.",
			},
			[]string{"strategy", "operation", "status"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diskalloc",
				Subsystem: "replay",
				Name:      "operation_duration_seconds",
				Help:      "Time spent executing a replayed operation, in seconds.",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
			},
			[]string{"strategy", "operation"}),
	}

	if err := registerer.Register(m.operations); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(
	strategy string, op diskalloc.Operation, status diskalloc.Status, elapsed time.Duration,
) {
	m.operations.WithLabelValues(strategy, op.String(), status.String()).Inc()
	m.duration.WithLabelValues(strategy, op.String()).Observe(elapsed.Seconds())
}
