// Package metrics exposes process and domain metrics in Prometheus
// exposition format. Counters, gauges, and histograms are created
// through a Registry's get-or-create accessors so callers never need
// to check for nil, then served over HTTP with promhttp the way any
// Prometheus-instrumented Go service does.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric registered under it, keyed by name.
type Registry struct {
	reg     *prometheus.Registry
	factory promauto.Factory

	mu          sync.Mutex
	counters    map[string]prometheus.Counter
	counterVecs map[string]*prometheus.CounterVec
	gauges      map[string]prometheus.Gauge
	histograms  map[string]prometheus.Histogram
}

// NewRegistry creates an empty Registry with its own prometheus.Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{
		reg:         reg,
		factory:     promauto.With(reg),
		counters:    make(map[string]prometheus.Counter),
		counterVecs: make(map[string]*prometheus.CounterVec),
		gauges:      make(map[string]prometheus.Gauge),
		histograms:  make(map[string]prometheus.Histogram),
	}
}

// DefaultRegistry is the process-wide registry used by the predefined
// metrics in standard.go.
var DefaultRegistry = NewRegistry()

// Counter returns the Counter registered under name, creating it with
// help text on first access.
func (r *Registry) Counter(name, help string) prometheus.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := r.factory.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	r.counters[name] = c
	return c
}

// CounterVec returns the CounterVec registered under name, creating it
// with the given label names on first access.
func (r *Registry) CounterVec(name, help string, labels []string) *prometheus.CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counterVecs[name]; ok {
		return c
	}
	c := r.factory.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	r.counterVecs[name] = c
	return c
}

// Gauge returns the Gauge registered under name, creating it with help
// text on first access.
func (r *Registry) Gauge(name, help string) prometheus.Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := r.factory.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	r.gauges[name] = g
	return g
}

// Histogram returns the Histogram registered under name, creating it
// with help text and buckets on first access. A nil buckets slice uses
// prometheus.DefBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64) prometheus.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	h := r.factory.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
	r.histograms[name] = h
	return h
}

// Gatherer exposes the underlying prometheus.Gatherer for use with
// promhttp or testutil.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Registerer exposes the underlying prometheus.Registerer so runtime
// collectors can be registered directly against it.
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }
