package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize observes the size of one HTTP response body
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks the start of a request
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of a request
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordStoreOperation records one analysis store call
func (r *Registry) RecordStoreOperation(driver, operation string, err error, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(driver, operation, status(err)).Inc()
	r.StoreOperationDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err == nil && operation == "create" {
		r.StoreRecordsTotal.Inc()
	}
}

// RecordParse records one parse of a dump
func (r *Registry) RecordParse(network string, nodes, torNodes int, failed bool, duration time.Duration) {
	r.ParseDuration.WithLabelValues(network).Observe(duration.Seconds())
	r.NodesParsed.WithLabelValues(network).Observe(float64(nodes))
	r.TorNodes.WithLabelValues(network).Set(float64(torNodes))
	if failed {
		r.ParseFailuresTotal.WithLabelValues(network).Inc()
	}
}

// RecordDetection records which rule classified a dump
func (r *Registry) RecordDetection(network, rule string) {
	r.DetectionsTotal.WithLabelValues(network, rule).Inc()
}

// AnalysisOutcome is what RecordAnalysis needs to know about a finished run
type AnalysisOutcome struct {
	Network           string
	Scenario          string
	Gini              float64
	Nakamoto          int
	LossPct           float64
	NoMatchingTargets bool
	Err               error
	Duration          time.Duration
}

// RecordAnalysis records a completed or failed analysis
func (r *Registry) RecordAnalysis(o AnalysisOutcome) {
	r.AnalysesTotal.WithLabelValues(o.Network, o.Scenario, status(o.Err)).Inc()
	r.AnalysisDuration.WithLabelValues(o.Network).Observe(o.Duration.Seconds())
	if o.Err != nil {
		return
	}
	r.Gini.WithLabelValues(o.Network, o.Scenario).Set(o.Gini)
	r.Nakamoto.WithLabelValues(o.Network, o.Scenario).Set(float64(o.Nakamoto))
	r.ConnectivityLoss.WithLabelValues(o.Network, o.Scenario).Set(o.LossPct)
	if o.NoMatchingTargets {
		r.NoMatchingTargetsTotal.WithLabelValues(o.Network, o.Scenario).Inc()
	}
}

// RecordEvent records a publish attempt
func (r *Registry) RecordEvent(topic, sink string, err error) {
	r.EventsPublishedTotal.WithLabelValues(topic, sink, status(err)).Inc()
}

// UpdateSystemMetrics samples uptime and Go runtime statistics
func (r *Registry) UpdateSystemMetrics() {
	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
