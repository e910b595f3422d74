// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_triggered_total",
			Help: "Total number of event triggers processed by the engine",
		},
		[]string{"category"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Total number of per-channel delivery attempts by outcome",
		},
		[]string{"channel", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_dispatch_duration_seconds",
			Help: "Duration of a full event dispatch in seconds",
		},
		[]string{"category"},
	)

	ListenersEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_listeners_evaluated_total",
			Help: "Total number of listeners evaluated during consolidation",
		},
	)

	TemplateCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_template_cache_requests_total",
			Help: "Template cache lookups by result",
		},
		[]string{"result"},
	)
)
