package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors. One instance is
// wired through the server, handlers and the result cache.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeFailures   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alert_atlas",
			Name:      "request_duration_seconds",
			Help:      "Duration of analytics API requests by view and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view", "status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_atlas",
			Name:      "cache_hits_total",
			Help:      "Number of result cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_atlas",
			Name:      "cache_misses_total",
			Help:      "Number of result cache misses",
		}),
		storeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_atlas",
			Name:      "store_failures_total",
			Help:      "Number of failed alert store fetches",
		}),
	}

	m.registry.MustRegister(m.requestDuration, m.cacheHits, m.cacheMisses, m.storeFailures)
	return m
}

// Handler serves the /metrics endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one request's duration.
func (m *Metrics) ObserveRequest(view, status string, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(view, status).Observe(elapsed.Seconds())
}

// Hit and Miss implement the cache.Recorder interface.
func (m *Metrics) Hit()  { m.cacheHits.Inc() }
func (m *Metrics) Miss() { m.cacheMisses.Inc() }

// StoreFailure counts a failed dataset fetch.
func (m *Metrics) StoreFailure() { m.storeFailures.Inc() }
