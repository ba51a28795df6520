package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistryCounterGetOrCreate(t *testing.T) {
	r := NewRegistry()
	c1 := r.Counter("test_counter", "a test counter")
	c2 := r.Counter("test_counter", "a test counter")
	if c1 != c2 {
		t.Fatal("Counter(name) returned a different instance on second call")
	}

	c1.Add(3)
	if got := testutil.ToFloat64(c1); got != 3 {
		t.Fatalf("counter value = %v, want 3", got)
	}
}

func TestRegistryGaugeGetOrCreate(t *testing.T) {
	r := NewRegistry()
	g1 := r.Gauge("test_gauge", "a test gauge")
	g2 := r.Gauge("test_gauge", "a test gauge")
	if g1 != g2 {
		t.Fatal("Gauge(name) returned a different instance on second call")
	}

	g1.Set(42)
	if got := testutil.ToFloat64(g1); got != 42 {
		t.Fatalf("gauge value = %v, want 42", got)
	}
}

func TestRegistryHistogramGetOrCreate(t *testing.T) {
	r := NewRegistry()
	h1 := r.Histogram("test_histogram", "a test histogram", nil)
	h2 := r.Histogram("test_histogram", "a test histogram", nil)
	if h1 != h2 {
		t.Fatal("Histogram(name) returned a different instance on second call")
	}
	h1.Observe(1.5)
}

func TestRegistryCounterVecLabels(t *testing.T) {
	r := NewRegistry()
	cv := r.CounterVec("test_outcomes_total", "outcomes by kind", []string{"outcome"})
	cv.WithLabelValues("ok").Inc()
	cv.WithLabelValues("ok").Inc()
	cv.WithLabelValues("fail").Inc()

	if got := testutil.ToFloat64(cv.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cv.WithLabelValues("fail")); got != 1 {
		t.Fatalf("fail count = %v, want 1", got)
	}
}

func TestExporterServesRegisteredMetrics(t *testing.T) {
	r := NewRegistry()
	r.Counter("served_total", "a metric the exporter should render").Inc()

	e, err := NewExporter(r, ExporterConfig{EnableRuntime: false, Path: "/metrics"})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	metricFamilies, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() == "served_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("served_total metric not present in gathered families")
	}
	if e.Handler() == nil {
		t.Fatal("Handler() returned nil")
	}
}

func TestNewExporterDefaultsPath(t *testing.T) {
	r := NewRegistry()
	e, err := NewExporter(r, ExporterConfig{})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if e.config.Path != "/metrics" {
		t.Fatalf("config.Path = %q, want %q", e.config.Path, "/metrics")
	}
}

func TestNewExporterRegistersRuntimeCollectors(t *testing.T) {
	r := NewRegistry()
	if _, err := NewExporter(r, ExporterConfig{EnableRuntime: true}); err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	metricFamilies, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var sawGoCollectorMetric bool
	for _, mf := range metricFamilies {
		if strings.HasPrefix(mf.GetName(), "go_") {
			sawGoCollectorMetric = true
		}
	}
	if !sawGoCollectorMetric {
		t.Fatal("expected at least one go_* metric from the runtime collector")
	}
}

func TestStandardMetricsAreRegisteredOnDefaultRegistry(t *testing.T) {
	DutiesPollOutcomes.WithLabelValues("NoChange").Inc()
	MerkleCacheHits.Inc()

	metricFamilies, err := DefaultRegistry.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(metricFamilies))
	for _, mf := range metricFamilies {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"beacon_duties_poll_outcomes_total",
		"beacon_merkle_cache_hits_total",
	} {
		if !names[want] {
			t.Errorf("missing standard metric %q in default registry", want)
		}
	}
}
