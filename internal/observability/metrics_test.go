package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"pressmin/internal/minify"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveHit(minify.LangCSS)
	m.ObserveHit(minify.LangCSS)
	m.ObserveMiss(minify.LangJS)

	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("css")); got != 2 {
		t.Errorf("expected 2 css hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses.WithLabelValues("js")); got != 1 {
		t.Errorf("expected 1 js miss, got %v", got)
	}
}

func TestMetricsMinifyOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveMinify(minify.LangCSS, minify.Result{Succeeded: true, BytesSaved: 120}, 3*time.Millisecond)
	m.ObserveMinify(minify.LangCSS, minify.Result{Succeeded: false}, time.Millisecond)

	if got := testutil.ToFloat64(m.minifyRuns.WithLabelValues("css", "minified")); got != 1 {
		t.Errorf("expected 1 minified run, got %v", got)
	}
	if got := testutil.ToFloat64(m.minifyRuns.WithLabelValues("css", "fallback")); got != 1 {
		t.Errorf("expected 1 fallback run, got %v", got)
	}
	if got := testutil.ToFloat64(m.bytesSaved.WithLabelValues("css")); got != 120 {
		t.Errorf("expected 120 bytes saved, got %v", got)
	}
}
