package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExporterConfig configures the HTTP exporter.
type ExporterConfig struct {
	// EnableRuntime registers Go runtime and process collectors
	// (goroutines, memory, GC, open file descriptors) alongside the
	// domain metrics.
	EnableRuntime bool
	// Path is the HTTP path metrics are served on. Defaults to
	// "/metrics".
	Path string
}

// DefaultExporterConfig returns a config with sensible defaults.
func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{EnableRuntime: true, Path: "/metrics"}
}

// Exporter serves a Registry's metrics over HTTP in Prometheus text
// exposition format.
type Exporter struct {
	registry *Registry
	config   ExporterConfig
}

// NewExporter creates an exporter for registry. If config.EnableRuntime
// is set, Go runtime and process collectors are registered immediately;
// registration errors (e.g. double-registration against a shared
// registry) are returned so callers can decide whether they matter.
func NewExporter(registry *Registry, config ExporterConfig) (*Exporter, error) {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	if config.EnableRuntime {
		if err := registry.Registerer().Register(collectors.NewGoCollector()); err != nil {
			return nil, err
		}
		if err := registry.Registerer().Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, err
		}
	}
	return &Exporter{registry: registry, config: config}, nil
}

// Handler returns an http.Handler serving the configured path.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(e.config.Path, promhttp.HandlerFor(e.registry.Gatherer(), promhttp.HandlerOpts{}))
	return mux
}
