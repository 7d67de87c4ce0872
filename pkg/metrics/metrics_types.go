// Package metrics exposes nodelyzer's Prometheus instrumentation.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Analysis Metrics
	AnalysesTotal          *prometheus.CounterVec
	AnalysisDuration       *prometheus.HistogramVec
	ParseDuration          *prometheus.HistogramVec
	NodesParsed            *prometheus.HistogramVec
	ParseFailuresTotal     *prometheus.CounterVec
	TorNodes               *prometheus.GaugeVec
	Gini                   *prometheus.GaugeVec
	Nakamoto               *prometheus.GaugeVec
	ConnectivityLoss       *prometheus.GaugeVec
	NoMatchingTargetsTotal *prometheus.CounterVec
	DetectionsTotal        *prometheus.CounterVec

	// Store Metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	StoreRecordsTotal      prometheus.Counter

	// Event Metrics
	EventsPublishedTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initStoreMetrics()
	r.initEventMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
