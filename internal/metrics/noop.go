package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncStatusCheckCreated is a no-op.
func (n *NoopRecorder) IncStatusCheckCreated() {}

// IncContactMessageCreated is a no-op.
func (n *NoopRecorder) IncContactMessageCreated() {}

// IncStoreFailure is a no-op.
func (n *NoopRecorder) IncStoreFailure(collection string) {}

// IncNotificationEnqueued is a no-op.
func (n *NoopRecorder) IncNotificationEnqueued(status string) {}

// IncNotificationProcessed is a no-op.
func (n *NoopRecorder) IncNotificationProcessed(status string) {}

// ObserveNotificationSendDuration is a no-op.
func (n *NoopRecorder) ObserveNotificationSendDuration(duration time.Duration) {}

// SetNotificationQueueDepth is a no-op.
func (n *NoopRecorder) SetNotificationQueueDepth(depth int64) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(route string) {}
