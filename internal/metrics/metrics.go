package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Metrics Types:

- CounterVec: A counter with labels. Requests are counted per endpoint
  and outcome (success, application_error, transport_error), so a spike
  of rejected votes can be told apart from the service being unreachable.

- Histogram: Tracks the distribution of request latency per endpoint,
  not just the average.

Registration:
Constructors take a prometheus.Registerer. Binaries pass
prometheus.DefaultRegisterer, tests pass a fresh prometheus.NewRegistry()
so the same metric can be built more than once.
*/

const (
	OutcomeSuccess          = "success"
	OutcomeApplicationError = "application_error"
	OutcomeTransportError   = "transport_error"
)

type ClientMetrics struct {
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

func NewClientMetrics(reg prometheus.Registerer, namespace string) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the poll service",
			},
			[]string{"endpoint", "outcome"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Histogram of poll service round-trip times",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
			},
			[]string{"endpoint"},
		),
	}
}

// Observe records one finished request. A nil receiver is a no-op.
func (m *ClientMetrics) Observe(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.RequestLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

type RelayMetrics struct {
	Refreshes  *prometheus.CounterVec
	Broadcasts *prometheus.CounterVec
}

func NewRelayMetrics(reg prometheus.Registerer, namespace string) *RelayMetrics {
	factory := promauto.With(reg)
	return &RelayMetrics{
		Refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "refreshes_total",
				Help:      "Total number of results refreshes, by result (changed, unchanged, failed)",
			},
			[]string{"result"},
		),
		Broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "broadcasts_total",
				Help:      "Total number of results snapshots pushed to subscribers",
			},
			[]string{"poll_id"},
		),
	}
}

// Refreshed counts one refresh by result. Poll ids are left out since
// any caller can ask for an unknown one.
func (m *RelayMetrics) Refreshed(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

func (m *RelayMetrics) Broadcasted(pollID string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(pollID).Inc()
}
