package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics captures stream relay health signals.
type Metrics struct {
	eventsForwarded *prometheus.CounterVec
	eventsPersisted *prometheus.CounterVec
	persistFailures prometheus.Counter
	connects        *prometheus.CounterVec
	activeWorkers   prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *Metrics
)

// New returns the singleton metrics registry.
func New() *Metrics {
	metricsOnce.Do(func() {
		m := &Metrics{
			eventsForwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "streamlens_events_forwarded_total",
				Help: "Events forwarded to subscribers, by event type.",
			}, []string{"type"}),
			eventsPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "streamlens_events_persisted_total",
				Help: "Events durably recorded, by event type.",
			}, []string{"type"}),
			persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "streamlens_event_persist_failures_total",
				Help: "Event writes that failed and were dropped.",
			}),
			connects: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "streamlens_stream_connects_total",
				Help: "Upstream connection attempts, by result.",
			}, []string{"result"}),
			activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "streamlens_active_stream_workers",
				Help: "Connection workers currently registered.",
			}),
		}
		prometheus.MustRegister(
			m.eventsForwarded,
			m.eventsPersisted,
			m.persistFailures,
			m.connects,
			m.activeWorkers,
		)
		metricsInst = m
	})
	return metricsInst
}

func (m *Metrics) IncForwarded(eventType string) {
	if m == nil {
		return
	}
	m.eventsForwarded.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncPersisted(eventType string) {
	if m == nil {
		return
	}
	m.eventsPersisted.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) IncConnect(result string) {
	if m == nil {
		return
	}
	m.connects.WithLabelValues(result).Inc()
}

func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.activeWorkers.Inc()
}

func (m *Metrics) WorkerStopped() {
	if m == nil {
		return
	}
	m.activeWorkers.Dec()
}
