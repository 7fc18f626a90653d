// Package metrics provides Prometheus metrics for the site tools service
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes
const (
	OutcomeResolved = "resolved"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the service.
// Record methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Legal document metrics
	ResolutionsTotal    *prometheus.CounterVec
	AcceptancesTotal    *prometheus.CounterVec
	RedirectsTotal      *prometheus.CounterVec
	ContactMessageTotal prometheus.Counter
	SiteLogsTotal       *prometheus.CounterVec
}

// New creates all metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitetools_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitetools_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitetools_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitetools_legal_resolutions_total",
				Help: "Legal document version resolutions by outcome",
			},
			[]string{"outcome"},
		),
		AcceptancesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitetools_legal_acceptances_total",
				Help: "Recorded legal document acceptances",
			},
			[]string{"document"},
		),
		RedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitetools_redirects_total",
				Help: "Redirects issued by reason",
			},
			[]string{"reason"},
		),
		ContactMessageTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sitetools_contact_messages_total",
				Help: "Stored contact messages",
			},
		),
		SiteLogsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitetools_site_logs_total",
				Help: "Site log entries by level",
			},
			[]string{"level"},
		),
	}
}

// Registry exposes the underlying registry (used by tests)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordAcceptance(documentID string) {
	if m == nil {
		return
	}
	m.AcceptancesTotal.WithLabelValues(documentID).Inc()
}

func (m *Metrics) RecordRedirect(reason string) {
	if m == nil {
		return
	}
	m.RedirectsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordContactMessage() {
	if m == nil {
		return
	}
	m.ContactMessageTotal.Inc()
}

func (m *Metrics) RecordSiteLog(level string) {
	if m == nil {
		return
	}
	m.SiteLogsTotal.WithLabelValues(level).Inc()
}
