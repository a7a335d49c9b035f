// Package metrics provides Prometheus metrics for the storefront API and client core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPRequestDuration measures handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CartOperationsTotal counts server-side cart writes.
	CartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_operations_total",
			Help:      "Total number of cart operations",
		},
		[]string{"operation", "status"},
	)

	// TrackedEventsTotal counts analytics events accepted by /api/track.
	TrackedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "tracked_events_total",
			Help:      "Total number of tracked analytics events",
		},
		[]string{"event"},
	)

	// SyncOperationsTotal counts client synchronizer operations.
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront_client",
			Name:      "sync_operations_total",
			Help:      "Total number of cart synchronizer operations",
		},
		[]string{"operation", "status"},
	)

	// StaleRefetchDiscarded counts refetch results dropped after an identity change.
	StaleRefetchDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront_client",
			Name:      "stale_refetch_discarded_total",
			Help:      "Refetch results discarded because the identity changed",
		},
	)

	// OfflineQueueDepth tracks the number of queued data logger entries.
	OfflineQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront_client",
			Name:      "offline_queue_depth",
			Help:      "Number of entries waiting in the offline write queue",
		},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordCartOperation records a server-side cart write.
func RecordCartOperation(op string, err error) {
	CartOperationsTotal.WithLabelValues(op, status(err)).Inc()
}

// RecordSync records a client synchronizer operation.
func RecordSync(op string, err error) {
	SyncOperationsTotal.WithLabelValues(op, status(err)).Inc()
}

// RecordTrack records an accepted analytics event.
func RecordTrack(event string) {
	TrackedEventsTotal.WithLabelValues(event).Inc()
}
