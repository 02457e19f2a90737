package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publisher loop behaviour.
type PublisherMetrics struct {
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
	dlq       prometheus.Counter
	loop      prometheus.Histogram
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published to Pub/Sub.",
	}, []string{"event_type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	dlq := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered_total",
		Help: "Outbox events moved to the DLQ.",
	})
	loop := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_loop_seconds",
		Help:    "Duration of one publisher poll loop.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failures, dlq, loop)
	return &PublisherMetrics{
		published: published,
		failures:  failures,
		dlq:       dlq,
		loop:      loop,
	}
}

// IncPublished counts a successful publish for the event type.
func (p *PublisherMetrics) IncPublished(eventType string) {
	if p == nil || p.published == nil {
		return
	}
	p.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure counts a failed publish attempt for the event type.
func (p *PublisherMetrics) IncFailure(eventType string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered counts an event moved to the DLQ.
func (p *PublisherMetrics) IncDeadLettered() {
	if p == nil || p.dlq == nil {
		return
	}
	p.dlq.Inc()
}

// ObserveLoop records the duration of one poll loop.
func (p *PublisherMetrics) ObserveLoop(duration time.Duration) {
	if p == nil || p.loop == nil {
		return
	}
	p.loop.Observe(duration.Seconds())
}
