package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_store_operations_total",
			Help: "Total number of analysis store operations",
		},
		[]string{"driver", "operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodelyzer_store_operation_duration_seconds",
			Help:    "Analysis store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"driver", "operation"},
	)

	r.StoreRecordsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodelyzer_store_records_created_total",
			Help: "Analysis records created since start",
		},
	)
}

func (r *Registry) initEventMetrics() {
	r.EventsPublishedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelyzer_events_published_total",
			Help: "Events published by topic and sink",
		},
		[]string{"topic", "sink", "status"},
	)
}
