package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes for DatasetGenerations.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	DatasetRows         prometheus.Gauge
	DatasetGenerations  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Rows in the currently loaded dataset.",
		}),
		DatasetGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_generations_total",
			Help: "Dataset generation runs by outcome.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.DatasetRows,
		m.DatasetGenerations,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. All Observe and Set methods
// are no-ops on a nil *Metrics.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveGeneration counts a generation run by outcome.
func (m *Metrics) ObserveGeneration(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.DatasetGenerations.WithLabelValues(StatusFailure).Inc()
		return
	}
	m.DatasetGenerations.WithLabelValues(StatusSuccess).Inc()
}

// SetDatasetRows records the size of the loaded dataset.
func (m *Metrics) SetDatasetRows(n int) {
	if m == nil {
		return
	}
	m.DatasetRows.Set(float64(n))
}
