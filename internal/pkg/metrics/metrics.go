// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ils_tools"

// Metrics groups the collectors of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	registryCalls *prometheus.CounterVec
	registryTime  *prometheus.HistogramVec
	scans         *prometheus.CounterVec
	bulkRecords   *prometheus.CounterVec
	tasks         *prometheus.CounterVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		registryCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_total",
			Help:      "Calls to the catalog backend by operation and outcome.",
		}, []string{"operation", "outcome"}),
		registryTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registry_request_duration_seconds",
			Help:      "Catalog backend latency by operation.",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scan registrations by screen and outcome.",
		}, []string{"screen", "outcome"}),
		bulkRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_records_total",
			Help:      "Records written by bulk updates by kind and outcome.",
		}, []string{"kind", "outcome"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_processed_total",
			Help:      "Background tasks processed by type and outcome.",
		}, []string{"type", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.registryCalls,
		m.registryTime,
		m.scans,
		m.bulkRecords,
		m.tasks,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRegistryCall records one catalog backend call
func (m *Metrics) ObserveRegistryCall(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.registryCalls.WithLabelValues(operation, outcome(err)).Inc()
	m.registryTime.WithLabelValues(operation).Observe(d.Seconds())
}

// Scan outcomes
const (
	ScanRecorded  = "recorded"
	ScanDuplicate = "duplicate"
	ScanNotFound  = "not_found"
	ScanFailed    = "failed"
)

// IncScan counts a scan registration on screen ("inventory" or "discard")
func (m *Metrics) IncScan(screen, result string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(screen, result).Inc()
}

// AddBulkRecords counts written records of one kind
func (m *Metrics) AddBulkRecords(kind string, succeeded, failed int) {
	if m == nil {
		return
	}
	m.bulkRecords.WithLabelValues(kind, "success").Add(float64(succeeded))
	m.bulkRecords.WithLabelValues(kind, "error").Add(float64(failed))
}

// IncTask counts a processed background task
func (m *Metrics) IncTask(taskType string, err error) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(taskType, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
