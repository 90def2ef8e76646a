// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sigmax"

type Metrics struct {
	registry *prometheus.Registry

	EventsPublished *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	AIRequests      *prometheus.CounterVec
	AIDuration      *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRateLimited prometheus.Counter
	WSConnections   prometheus.Gauge
	ScansArchived   *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total",
			Help: "Change events published, by type.",
		}, []string{"type"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_dropped_total",
			Help: "Change events dropped because a subscriber queue was full.",
		}, []string{"type"}),
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ai_requests_total",
			Help: "Generative API calls, by operation and outcome.",
		}, []string{"op", "outcome"}),
		AIDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "ai_request_duration_seconds",
			Help:    "Latency of generative API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
		HTTPRateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_rate_limited_total",
			Help: "HTTP requests rejected by the per-client limiter.",
		}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ws_connections",
			Help: "Open websocket connections.",
		}),
		ScansArchived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scans_archived_total",
			Help: "Identity scans uploaded to object storage, by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
