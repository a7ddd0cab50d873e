package app

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Archive render outcomes.
const (
	outcomeHomepage    = "homepage"
	outcomePlaceholder = "placeholder"
)

// Metrics owns the server's Prometheus registry.
type Metrics struct {
	registry       *prometheus.Registry
	archiveRenders *prometheus.CounterVec
	requests       *prometheus.CounterVec
}

// NewMetrics registers the server's collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		archiveRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sectionsite_archive_renders_total",
			Help: "Archive views rendered, by content type and outcome.",
		}, []string{"type", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sectionsite_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(m.archiveRenders, m.requests)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeArchive(typ string, res Resolution) {
	outcome := outcomePlaceholder
	if res.Found() {
		outcome = outcomeHomepage
	}
	m.archiveRenders.WithLabelValues(typ, outcome).Inc()
}

func (m *Metrics) observeRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
