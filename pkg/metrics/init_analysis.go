package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_analyses_total",
			Help: "Total number of analyses by network, scenario and outcome",
		},
		[]string{"network", "scenario", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodelyzer_analysis_duration_seconds",
			Help:    "End to end analysis duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"network"},
	)

	r.ParseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodelyzer_parse_duration_seconds",
			Help:    "Time spent parsing node dumps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"network"},
	)

	r.NodesParsed = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodelyzer_nodes_parsed",
			Help:    "Number of node records extracted per dump",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
		[]string{"network"},
	)

	r.ParseFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_parse_failures_total",
			Help: "Dumps that were structurally invalid and yielded no records",
		},
		[]string{"network"},
	)

	r.TorNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodelyzer_tor_nodes",
			Help: "Anonymous nodes in the most recently parsed dump",
		},
		[]string{"network"},
	)

	r.Gini = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodelyzer_gini",
			Help: "Gini coefficient of the most recent analysis",
		},
		[]string{"network", "scenario"},
	)

	r.Nakamoto = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodelyzer_nakamoto",
			Help: "Nakamoto coefficient of the most recent analysis",
		},
		[]string{"network", "scenario"},
	)

	r.ConnectivityLoss = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodelyzer_connectivity_loss_percent",
			Help: "Connectivity loss of the most recent simulation",
		},
		[]string{"network", "scenario"},
	)

	r.NoMatchingTargetsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_no_matching_targets_total",
			Help: "Simulations whose targets matched no node",
		},
		[]string{"network", "scenario"},
	)

	r.DetectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_detections_total",
			Help: "Network detections by result and deciding rule",
		},
		[]string{"network", "rule"},
	)
}
