// Package metrics exposes Prometheus instrumentation for analyses and the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection on its own registry.
type Collector struct {
	Registry *prometheus.Registry

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	RowsProcessed    prometheus.Counter
	EventsDetected   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with a private registry, so several
// collectors can coexist in one process.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,

		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of flight log analyses by status",
			},
			[]string{"status"},
		),

		RowsProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_processed_total",
				Help:      "Total number of log rows analyzed",
			},
		),

		EventsDetected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_detected_total",
				Help:      "Total number of flight events detected by type",
			},
			[]string{"type"},
		),

		AnalysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of one flight log analysis in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"endpoint"},
		),
	}
}

// RecordAnalysis records the outcome of one analysis run.
func (c *Collector) RecordAnalysis(status string, rows int, events map[string]int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.AnalysesTotal.WithLabelValues(status).Inc()
	c.RowsProcessed.Add(float64(rows))
	for typ, n := range events {
		c.EventsDetected.WithLabelValues(typ).Add(float64(n))
	}
	c.AnalysisDuration.Observe(elapsed.Seconds())
}

// RecordAPIRequest records one served request.
func (c *Collector) RecordAPIRequest(endpoint, method, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
