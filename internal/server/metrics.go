package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Edit kinds recorded by Metrics.
const (
	EditIncremental = "incremental"
	EditFull        = "full"
)

// Metrics collects server counters on a private registry so several servers
// (and tests) never collide on the global one. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documentsOpen  prometheus.Gauge
	edits          *prometheus.CounterVec
	reparseSeconds prometheus.Histogram
	requests       *prometheus.CounterVec
	requestErrors  *prometheus.CounterVec
}

// NewMetrics creates and registers the server metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysy_lsp_documents_open",
			Help: "Number of documents currently open",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sysy_lsp_edits_total",
			Help: "Applied content changes by kind",
		}, []string{"kind"}),
		reparseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sysy_lsp_reparse_seconds",
			Help:    "Time spent reparsing a document after a change",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sysy_lsp_requests_total",
			Help: "Handled requests by method",
		}, []string{"method"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sysy_lsp_request_errors_total",
			Help: "Failed requests by method",
		}, []string{"method"}),
	}
	m.registry.MustRegister(m.documentsOpen, m.edits, m.reparseSeconds, m.requests, m.requestErrors)
	return m
}

// Registry exposes the registry for an HTTP endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) DocumentOpened() {
	if m != nil {
		m.documentsOpen.Inc()
	}
}

func (m *Metrics) DocumentClosed() {
	if m != nil {
		m.documentsOpen.Dec()
	}
}

func (m *Metrics) Edit(kind string) {
	if m != nil {
		m.edits.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Reparse(d time.Duration) {
	if m != nil {
		m.reparseSeconds.Observe(d.Seconds())
	}
}

// Request records a handled request and whether it failed.
func (m *Metrics) Request(method string, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method).Inc()
	if err != nil {
		m.requestErrors.WithLabelValues(method).Inc()
	}
}
