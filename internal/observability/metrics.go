// Package observability exposes Prometheus metrics for the cache and the
// minification pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pressmin/internal/assetcache"
	"pressmin/internal/minify"
)

// Metrics implements assetcache.Hooks on top of a Prometheus registerer.
type Metrics struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	minifyRuns     *prometheus.CounterVec
	bytesSaved     *prometheus.CounterVec
	minifyDuration *prometheus.HistogramVec
}

// NewMetrics registers the pressmin collectors with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry so repeated registration never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pressmin_cache_hits_total",
			Help: "Total number of cache hits, by asset language",
		}, []string{"language"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pressmin_cache_misses_total",
			Help: "Total number of cache misses, by asset language",
		}, []string{"language"}),
		minifyRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pressmin_minify_runs_total",
			Help: "Total pipeline runs, by language and outcome (minified or fallback)",
		}, []string{"language", "outcome"}),
		bytesSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pressmin_minify_bytes_saved_total",
			Help: "Total bytes removed from assets by the pipeline",
		}, []string{"language"}),
		minifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pressmin_minify_duration_seconds",
			Help:    "Wall-clock duration of pipeline runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"language"}),
	}
}

func (m *Metrics) ObserveHit(lang minify.Language) {
	m.cacheHits.WithLabelValues(string(lang)).Inc()
}

func (m *Metrics) ObserveMiss(lang minify.Language) {
	m.cacheMisses.WithLabelValues(string(lang)).Inc()
}

func (m *Metrics) ObserveMinify(lang minify.Language, res minify.Result, elapsed time.Duration) {
	outcome := "minified"
	if !res.Succeeded {
		outcome = "fallback"
	}
	m.minifyRuns.WithLabelValues(string(lang), outcome).Inc()
	if res.BytesSaved > 0 {
		m.bytesSaved.WithLabelValues(string(lang)).Add(float64(res.BytesSaved))
	}
	m.minifyDuration.WithLabelValues(string(lang)).Observe(elapsed.Seconds())
}

var _ assetcache.Hooks = (*Metrics)(nil)
