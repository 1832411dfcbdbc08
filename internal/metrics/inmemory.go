package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	StatusChecksCreated     uint64
	ContactMessagesCreated  uint64
	StoreFailures           map[string]uint64
	NotificationsEnqueued   map[string]uint64
	NotificationsProcessed  map[string]uint64
	NotificationSendCount   uint64
	NotificationSendTotalNs int64
	NotificationQueueDepth  int64
	RateLimited             map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	statusChecksCreated     uint64
	contactMessagesCreated  uint64
	notificationSendCount   uint64
	notificationSendTotalNs int64
	notificationQueueDepth  int64

	mu       sync.Mutex
	labelled map[string]map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{labelled: make(map[string]map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		StatusChecksCreated:     atomic.LoadUint64(&m.statusChecksCreated),
		ContactMessagesCreated:  atomic.LoadUint64(&m.contactMessagesCreated),
		StoreFailures:           m.copyLabels("store_failures"),
		NotificationsEnqueued:   m.copyLabels("notifications_enqueued"),
		NotificationsProcessed:  m.copyLabels("notifications_processed"),
		NotificationSendCount:   atomic.LoadUint64(&m.notificationSendCount),
		NotificationSendTotalNs: atomic.LoadInt64(&m.notificationSendTotalNs),
		NotificationQueueDepth:  atomic.LoadInt64(&m.notificationQueueDepth),
		RateLimited:             m.copyLabels("rate_limited"),
	}
}

// IncStatusCheckCreated increments the status check counter.
func (m *InMemoryRecorder) IncStatusCheckCreated() {
	atomic.AddUint64(&m.statusChecksCreated, 1)
}

// IncContactMessageCreated increments the contact message counter.
func (m *InMemoryRecorder) IncContactMessageCreated() {
	atomic.AddUint64(&m.contactMessagesCreated, 1)
}

// IncStoreFailure counts a failed write or read per collection.
func (m *InMemoryRecorder) IncStoreFailure(collection string) {
	m.incLabel("store_failures", collection)
}

// IncNotificationEnqueued counts enqueue attempts by outcome.
func (m *InMemoryRecorder) IncNotificationEnqueued(status string) {
	m.incLabel("notifications_enqueued", status)
}

// IncNotificationProcessed counts worker outcomes.
func (m *InMemoryRecorder) IncNotificationProcessed(status string) {
	m.incLabel("notifications_processed", status)
}

// ObserveNotificationSendDuration records relay latency.
func (m *InMemoryRecorder) ObserveNotificationSendDuration(duration time.Duration) {
	atomic.AddUint64(&m.notificationSendCount, 1)
	atomic.AddInt64(&m.notificationSendTotalNs, duration.Nanoseconds())
}

// SetNotificationQueueDepth stores the latest queue depth.
func (m *InMemoryRecorder) SetNotificationQueueDepth(depth int64) {
	atomic.StoreInt64(&m.notificationQueueDepth, depth)
}

// IncRateLimited counts rejected requests per route.
func (m *InMemoryRecorder) IncRateLimited(route string) {
	m.incLabel("rate_limited", route)
}

func (m *InMemoryRecorder) incLabel(metric, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labelled[metric] == nil {
		m.labelled[metric] = make(map[string]uint64)
	}
	m.labelled[metric][label]++
}

func (m *InMemoryRecorder) copyLabels(metric string) map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.labelled[metric]))
	for k, v := range m.labelled[metric] {
		out[k] = v
	}
	return out
}
