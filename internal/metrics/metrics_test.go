package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncStatusCheckCreated()
	m.IncStatusCheckCreated()
	m.IncContactMessageCreated()
	m.IncStoreFailure("contact_submissions")
	m.IncNotificationEnqueued("success")
	m.IncNotificationEnqueued("dropped")
	m.IncNotificationEnqueued("success")
	m.IncNotificationProcessed("sent")
	m.ObserveNotificationSendDuration(250 * time.Millisecond)
	m.SetNotificationQueueDepth(7)
	m.IncRateLimited("contact")

	snap := m.Snapshot()

	if snap.StatusChecksCreated != 2 {
		t.Errorf("StatusChecksCreated = %d, want 2", snap.StatusChecksCreated)
	}
	if snap.ContactMessagesCreated != 1 {
		t.Errorf("ContactMessagesCreated = %d, want 1", snap.ContactMessagesCreated)
	}
	if snap.StoreFailures["contact_submissions"] != 1 {
		t.Errorf("StoreFailures = %v", snap.StoreFailures)
	}
	if snap.NotificationsEnqueued["success"] != 2 || snap.NotificationsEnqueued["dropped"] != 1 {
		t.Errorf("NotificationsEnqueued = %v", snap.NotificationsEnqueued)
	}
	if snap.NotificationsProcessed["sent"] != 1 {
		t.Errorf("NotificationsProcessed = %v", snap.NotificationsProcessed)
	}
	if snap.NotificationSendCount != 1 || snap.NotificationSendTotalNs != int64(250*time.Millisecond) {
		t.Errorf("send duration = %d/%d", snap.NotificationSendCount, snap.NotificationSendTotalNs)
	}
	if snap.NotificationQueueDepth != 7 {
		t.Errorf("NotificationQueueDepth = %d, want 7", snap.NotificationQueueDepth)
	}
	if snap.RateLimited["contact"] != 1 {
		t.Errorf("RateLimited = %v", snap.RateLimited)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncNotificationProcessed("failed")

	snap := m.Snapshot()
	snap.NotificationsProcessed["failed"] = 100

	if got := m.Snapshot().NotificationsProcessed["failed"]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: %d", got)
	}
}

func TestPrometheusRecorder_Exposition(t *testing.T) {
	t.Parallel()

	r := NewPrometheus()
	r.IncContactMessageCreated()
	r.IncNotificationProcessed("skipped")
	r.IncNotificationProcessed("skipped")

	expected := `
# HELP folio_notifications_processed_total Notifications handled by the worker, by outcome.
# TYPE folio_notifications_processed_total counter
folio_notifications_processed_total{status="skipped"} 2
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "folio_notifications_processed_total"); err != nil {
		t.Error(err)
	}

	if got := testutil.ToFloat64(r.contactMessagesCreated); got != 1 {
		t.Errorf("contact_messages_created_total = %v, want 1", got)
	}
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncStatusCheckCreated()
	r.SetNotificationQueueDepth(3)
}
