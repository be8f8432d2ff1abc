// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// Namespace prefixes every metric name.
const Namespace = "aisdecoder"

// Metrics implements ports.Observer on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	ServiceState    prometheus.Gauge
	Deliveries      prometheus.Counter
	Outcomes        *prometheus.CounterVec
	PublishDuration *prometheus.HistogramVec
	QueueDrops      prometheus.Counter
}

// New creates the pipeline metrics and registers them together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ServiceState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "service",
				Name:      "state",
				Help:      "Service state (0=stopped, 1=starting, 2=running, 3=stopping, 4=crashed)",
			},
		),

		Deliveries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of envelopes taken off the queue",
			},
		),

		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "messages",
				Name:      "processed_total",
				Help:      "Total number of envelopes processed, by outcome",
			},
			[]string{"outcome"},
		),

		PublishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "publish",
				Name:      "duration_seconds",
				Help:      "Publish duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),

		QueueDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "queue",
				Name:      "dropped_total",
				Help:      "Total number of deliveries dropped because the queue was full",
			},
		),
	}

	// Pre-create outcome series so they report zero before the first event.
	for _, o := range []domain.Outcome{
		domain.OutcomePublished,
		domain.OutcomeIncomplete,
		domain.OutcomeDroppedEnvelope,
		domain.OutcomeDroppedDecode,
		domain.OutcomePublishFailed,
	} {
		m.Outcomes.WithLabelValues(o.String())
	}

	m.registry.MustRegister(
		m.ServiceState,
		m.Deliveries,
		m.Outcomes,
		m.PublishDuration,
		m.QueueDrops,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterReassembly exports the counters of a reassembly buffer.
// stats is called on every scrape and must be safe for concurrent use.
func (m *Metrics) RegisterReassembly(stats func() reassembly.Stats) error {
	opts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{Namespace: Namespace, Subsystem: "reassembly", Name: name, Help: help}
	}
	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: Namespace, Subsystem: "reassembly", Name: name, Help: help}
	}

	cs := []prometheus.Collector{
		prometheus.NewGaugeFunc(opts("pending", "Incomplete multi-part messages held in the buffer"),
			func() float64 { return float64(stats().Pending) }),
		prometheus.NewCounterFunc(counter("single_total", "Single-part sentences passed through"),
			func() float64 { return float64(stats().Single) }),
		prometheus.NewCounterFunc(counter("completed_total", "Multi-part messages completed"),
			func() float64 { return float64(stats().Completed) }),
		prometheus.NewCounterFunc(counter("malformed_total", "Lines that could not be parsed as fragments"),
			func() float64 { return float64(stats().Malformed) }),
		prometheus.NewCounterFunc(counter("refused_total", "Fragments whose index exceeded the allocated slots"),
			func() float64 { return float64(stats().Refused) }),
		prometheus.NewCounterFunc(counter("evicted_total", "Incomplete messages evicted by capacity or age"),
			func() float64 { return float64(stats().Evicted) }),
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// SetServiceState records the numeric lifecycle state.
func (m *Metrics) SetServiceState(state int) {
	m.ServiceState.Set(float64(state))
}

// OnDelivery implements ports.Observer.
func (m *Metrics) OnDelivery() {
	m.Deliveries.Inc()
}

// OnOutcome implements ports.Observer.
func (m *Metrics) OnOutcome(outcome domain.Outcome) {
	m.Outcomes.WithLabelValues(outcome.String()).Inc()
}

// OnPublish implements ports.Observer.
func (m *Metrics) OnPublish(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PublishDuration.WithLabelValues(status).Observe(d.Seconds())
}

// OnQueueDrop implements ports.Observer.
func (m *Metrics) OnQueueDrop() {
	m.QueueDrops.Inc()
}
