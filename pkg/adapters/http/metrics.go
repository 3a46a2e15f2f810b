package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrumentation served under /metrics. Collectors are
// registered on an explicit registry, never on the global default, so
// embedders and tests keep their own namespace.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted prometheus.Counter
	Advances        prometheus.Counter
	Jumps           prometheus.Counter
	TraversalErrors *prometheus.CounterVec
	CompileSeconds  prometheus.Histogram
}

// NewMetrics creates and registers the server collectors on the registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_sessions_started_total",
			Help: "Sessions started or resumed over HTTP",
		}),
		Advances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_advances_total",
			Help: "Successful cursor advances",
		}),
		Jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_jumps_total",
			Help: "Successful cursor jumps",
		}),
		TraversalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_traversal_errors_total",
			Help: "Failed or rejected moves by reason",
		}, []string{"reason"}),
		CompileSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "parley_compile_duration_seconds",
			Help: "Time spent loading, parsing and compiling scripts",
		}),
	}
	reg.MustRegister(m.SessionsStarted, m.Advances, m.Jumps, m.TraversalErrors, m.CompileSeconds)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
