// Package metrics exposes execution counters and latencies in Prometheus format.
//
// The Recorder owns its registry instead of using the global default one, so tests
// (and multiple servers in one process) never collide on metric registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "playground"

// Recorder collects execution metrics.
type Recorder struct {
	registry *prometheus.Registry

	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
}

// New creates a Recorder with the Go runtime and process collectors registered alongside.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of code executions by language and outcome",
			},
			[]string{"language", "outcome"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Wall-clock time spent compiling and running code",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"language"},
		),
	}

	reg.MustRegister(
		r.executionsTotal,
		r.executionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveExecution records one finished execution.
func (r *Recorder) ObserveExecution(language, outcome string, duration time.Duration) {
	if language == "" {
		language = "unknown"
	}
	r.executionsTotal.WithLabelValues(language, outcome).Inc()
	r.executionDuration.WithLabelValues(language).Observe(duration.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
