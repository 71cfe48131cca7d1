package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus instruments on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	fetches         *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	resultsReturned prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mcp_nvidia",
				Name:      "backend_requests_total",
				Help:      "Search backend calls by outcome",
			},
			[]string{"status"}, // "ok" / "error"
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mcp_nvidia",
				Name:      "fetch_total",
				Help:      "Page fetches by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mcp_nvidia",
				Name:      "search_duration_seconds",
				Help:      "End to end orchestration duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
			},
			[]string{"operation", "partial"},
		),
		resultsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mcp_nvidia",
				Name:      "results_returned",
				Help:      "Number of hits returned per orchestration",
				Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mcp_nvidia",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
	m.registry.MustRegister(
		m.backendRequests,
		m.fetches,
		m.searchDuration,
		m.resultsReturned,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) BackendRequest(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.backendRequests.WithLabelValues(status).Inc()
}

// Fetch records a fetch outcome: "ok" or a fetch error kind.
func (m *Metrics) Fetch(outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Search(operation string, d time.Duration, returned int, partial bool) {
	if m == nil {
		return
	}
	p := "false"
	if partial {
		p = "true"
	}
	m.searchDuration.WithLabelValues(operation, p).Observe(d.Seconds())
	m.resultsReturned.Observe(float64(returned))
}

func (m *Metrics) HTTPRequest(method, path, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
