// Package metrics exposes the dashboard's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weather_board"

// DashboardMetrics records cache, fetch and batch activity. It satisfies
// weather.Recorder.
type DashboardMetrics struct {
	registry *prometheus.Registry

	cacheLookups  *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// New registers the dashboard collectors on registry. A nil registry gets a
// fresh one with the Go and process collectors attached.
func New(registry *prometheus.Registry) (*DashboardMetrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &DashboardMetrics{
		registry: registry,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Weather cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Weather gateway fetches by kind and status.",
		}, []string{"kind", "status"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Enrichment batches by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time taken to enrich the displayed cities.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.cacheLookups, m.fetches, m.batches, m.batchDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DashboardMetrics) CacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *DashboardMetrics) Fetch(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetches.WithLabelValues(kind, status).Inc()
}

func (m *DashboardMetrics) BatchDone(d time.Duration, committed bool) {
	outcome := "committed"
	if !committed {
		outcome = "discarded"
	}
	m.batches.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *DashboardMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
