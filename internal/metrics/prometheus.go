package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "folio"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	statusChecksCreated    prometheus.Counter
	contactMessagesCreated prometheus.Counter
	storeFailures          *prometheus.CounterVec
	notificationsEnqueued  *prometheus.CounterVec
	notificationsProcessed *prometheus.CounterVec
	notificationSend       prometheus.Histogram
	notificationQueueDepth prometheus.Gauge
	rateLimited            *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, including the
// Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: reg,
		statusChecksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_checks_created_total",
			Help:      "Status checks persisted.",
		}),
		contactMessagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_messages_created_total",
			Help:      "Contact messages persisted.",
		}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Document store operations that failed, by collection.",
		}, []string{"collection"}),
		notificationsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_enqueued_total",
			Help:      "Notification enqueue attempts, by outcome.",
		}, []string{"status"}),
		notificationsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_processed_total",
			Help:      "Notifications handled by the worker, by outcome.",
		}, []string{"status"}),
		notificationSend: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_send_duration_seconds",
			Help:      "Time spent talking to the mail relay.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		notificationQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notification_queue_depth",
			Help:      "Pending plus undelivered entries in the notification stream.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.statusChecksCreated,
		r.contactMessagesCreated,
		r.storeFailures,
		r.notificationsEnqueued,
		r.notificationsProcessed,
		r.notificationSend,
		r.notificationQueueDepth,
		r.rateLimited,
	)

	return r
}

// Gatherer returns the registry for exposition.
func (r *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// IncStatusCheckCreated increments the status check counter.
func (r *PrometheusRecorder) IncStatusCheckCreated() { r.statusChecksCreated.Inc() }

// IncContactMessageCreated increments the contact message counter.
func (r *PrometheusRecorder) IncContactMessageCreated() { r.contactMessagesCreated.Inc() }

// IncStoreFailure counts a failed store operation.
func (r *PrometheusRecorder) IncStoreFailure(collection string) {
	r.storeFailures.WithLabelValues(collection).Inc()
}

// IncNotificationEnqueued counts enqueue attempts by outcome.
func (r *PrometheusRecorder) IncNotificationEnqueued(status string) {
	r.notificationsEnqueued.WithLabelValues(status).Inc()
}

// IncNotificationProcessed counts worker outcomes.
func (r *PrometheusRecorder) IncNotificationProcessed(status string) {
	r.notificationsProcessed.WithLabelValues(status).Inc()
}

// ObserveNotificationSendDuration records relay latency.
func (r *PrometheusRecorder) ObserveNotificationSendDuration(duration time.Duration) {
	r.notificationSend.Observe(duration.Seconds())
}

// SetNotificationQueueDepth stores the latest queue depth.
func (r *PrometheusRecorder) SetNotificationQueueDepth(depth int64) {
	r.notificationQueueDepth.Set(float64(depth))
}

// IncRateLimited counts rejected requests per route.
func (r *PrometheusRecorder) IncRateLimited(route string) {
	r.rateLimited.WithLabelValues(route).Inc()
}
