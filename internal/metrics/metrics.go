// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Record creation
	IncStatusCheckCreated()
	IncContactMessageCreated()
	IncStoreFailure(collection string)

	// Notification pipeline metrics
	IncNotificationEnqueued(status string)  // status: "success" or "dropped"
	IncNotificationProcessed(status string) // status: "sent", "skipped", "failed", "dead_lettered"
	ObserveNotificationSendDuration(duration time.Duration)
	SetNotificationQueueDepth(depth int64)

	// Rate limiting
	IncRateLimited(route string)
}
