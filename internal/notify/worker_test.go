package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio/folio/internal/metrics"
	"github.com/folio/folio/internal/testutil"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []Payload
	err   error
}

func (s *fakeSender) Notify(ctx context.Context, p Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	return s.err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type panicSender struct {
	calls atomic.Int32
}

func (s *panicSender) Notify(ctx context.Context, p Payload) error {
	s.calls.Add(1)
	panic("template blew up")
}

type slowSender struct {
	delay time.Duration
	calls atomic.Int32
}

func (s *slowSender) Notify(ctx context.Context, p Payload) error {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return nil
}

func TestDecodeMessage(t *testing.T) {
	valid, _ := json.Marshal(testPayload())

	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr bool
	}{
		{"valid", map[string]interface{}{"payload": string(valid)}, false},
		{"missing field", map[string]interface{}{}, true},
		{"wrong type", map[string]interface{}{"payload": 42}, true},
		{"bad json", map[string]interface{}{"payload": "{not json"}, true},
		{"invalid payload", map[string]interface{}{"payload": `{"message_id":""}`}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodeMessage(redis.XMessage{ID: "1-0", Values: tt.values})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MessageID != "msg-1" {
				t.Errorf("MessageID = %s", p.MessageID)
			}
		})
	}
}

func TestWorker_Deliver(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{"sent", nil, StatusSent},
		{"not configured", ErrNotConfigured, StatusSkipped},
		{"relay failure", errors.New("boom"), StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(nil, &fakeSender{err: tt.err}, testutil.DiscardLogger(), "test", nil)
			status, err := w.deliver(context.Background(), testPayload())
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if (status == StatusFailed) != (err != nil) {
				t.Errorf("error %v inconsistent with status %s", err, status)
			}
		})
	}
}

func TestWorker_ShutdownBeforeRun(t *testing.T) {
	w := NewWorker(nil, &fakeSender{}, testutil.DiscardLogger(), "test", nil)
	if err := w.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

// startWorker runs a worker against Redis and stops it when the test ends.
func startWorker(t *testing.T, client *redis.Client, sender Sender, recorder metrics.Recorder, opts ...func(*Worker)) *Worker {
	t.Helper()
	w := NewWorker(client, sender, testutil.DiscardLogger(), NewConsumerID(), recorder)
	w.SetBlockTimeout(50 * time.Millisecond)
	for _, opt := range opts {
		opt(w)
	}

	go func() { _ = w.Run(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.Shutdown(ctx)
	})
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func pendingCount(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), StreamKey, ConsumerGroup).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	return pending.Count
}

func TestWorker_DeliversPublishedNotification(t *testing.T) {
	client := testutil.NewRedisClient(t)
	recorder := metrics.NewInMemory()
	sender := &fakeSender{}

	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	msg := testutil.NewTestContactMessage(t)
	if err := pub.Dispatch(context.Background(), msg); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	startWorker(t, client, sender, recorder)
	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusSent] == 1 })

	sender.mu.Lock()
	got := sender.calls[0]
	sender.mu.Unlock()
	if got.MessageID != msg.ID || got.SenderEmail != msg.SenderEmail || got.JobID == "" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if n := pendingCount(t, client); n != 0 {
		t.Errorf("expected no pending messages, got %d", n)
	}
	if recorder.Snapshot().NotificationsEnqueued["success"] != 1 {
		t.Error("expected enqueue to be recorded")
	}
}

func TestWorker_FailedDeliveryIsDeadLetteredOnce(t *testing.T) {
	client := testutil.NewRedisClient(t)
	recorder := metrics.NewInMemory()
	sender := &fakeSender{err: errors.New("relay down")}

	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	if err := pub.Dispatch(context.Background(), testutil.NewTestContactMessage(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	startWorker(t, client, sender, recorder)
	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusFailed] == 1 })

	dlq, err := client.XLen(context.Background(), DeadLetterStreamKey).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if dlq != 1 {
		t.Errorf("expected 1 dead-lettered message, got %d", dlq)
	}

	time.Sleep(200 * time.Millisecond)
	if sender.count() != 1 {
		t.Errorf("expected exactly one attempt, got %d", sender.count())
	}
	if n := pendingCount(t, client); n != 0 {
		t.Errorf("expected failed message to be acked, got %d pending", n)
	}
}

func TestWorker_PoisonMessage(t *testing.T) {
	client := testutil.NewRedisClient(t)
	recorder := metrics.NewInMemory()
	sender := &fakeSender{}

	err := client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{"payload": "{broken"},
	}).Err()
	if err != nil {
		t.Fatalf("xadd: %v", err)
	}

	startWorker(t, client, sender, recorder)
	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusDeadLettered] == 1 })

	if sender.count() != 0 {
		t.Error("poison message must not reach the sender")
	}
}

func TestPublisher_DispatchFailsWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	recorder := metrics.NewInMemory()

	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	pub.SetTimeout(200 * time.Millisecond)

	if err := pub.Dispatch(context.Background(), testutil.NewTestContactMessage(t)); err == nil {
		t.Fatal("expected error when Redis is unreachable")
	}
	if recorder.Snapshot().NotificationsEnqueued["dropped"] != 1 {
		t.Error("expected dropped enqueue to be recorded")
	}
}

func TestPublisher_DispatchIgnoresCallerCancellation(t *testing.T) {
	client := testutil.NewRedisClient(t)
	pub := NewPublisher(client, testutil.DiscardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pub.Dispatch(ctx, testutil.NewTestContactMessage(t)); err != nil {
		t.Fatalf("Dispatch with cancelled caller context failed: %v", err)
	}
	n, err := client.XLen(context.Background(), StreamKey).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 queued notification, got %d", n)
	}
}

func TestWorker_HandleRecoversSenderPanic(t *testing.T) {
	// Redis is unreachable: dead-lettering and acking fail and are only logged.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	recorder := metrics.NewInMemory()
	sender := &panicSender{}

	w := NewWorker(client, sender, testutil.DiscardLogger(), "test-consumer", recorder)
	raw, _ := json.Marshal(testPayload())

	w.handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{"payload": string(raw)}})

	if sender.calls.Load() != 1 {
		t.Errorf("expected one send attempt, got %d", sender.calls.Load())
	}
	if got := recorder.Snapshot().NotificationsProcessed[StatusDeadLettered]; got != 1 {
		t.Errorf("expected panic to be counted as dead-lettered, got %d", got)
	}
}

func TestWorker_SenderPanicIsDeadLetteredAndAcked(t *testing.T) {
	client := testutil.NewRedisClient(t)
	recorder := metrics.NewInMemory()
	sender := &panicSender{}

	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	if err := pub.Dispatch(context.Background(), testutil.NewTestContactMessage(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	startWorker(t, client, sender, recorder)
	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusDeadLettered] == 1 })

	entries, err := client.XRange(context.Background(), DeadLetterStreamKey, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 1 || entries[0].Values["reason"] != "panic" {
		t.Fatalf("expected one dead-letter entry with reason panic, got %+v", entries)
	}
	if n := pendingCount(t, client); n != 0 {
		t.Errorf("expected panicking message to be acked, got %d pending", n)
	}
	if sender.calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", sender.calls.Load())
	}
}

func TestWorker_SlowSendIsNotReclaimedByPeer(t *testing.T) {
	client := testutil.NewRedisClient(t)
	recorder := metrics.NewInMemory()
	sender := &slowSender{delay: 300 * time.Millisecond}

	claimFast := func(w *Worker) {
		w.SetClaimInterval(20 * time.Millisecond)
		w.SetClaimIdle(time.Second)
	}
	startWorker(t, client, sender, recorder, claimFast)
	startWorker(t, client, sender, recorder, claimFast)

	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	if err := pub.Dispatch(context.Background(), testutil.NewTestContactMessage(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusSent] == 1 })
	time.Sleep(1500 * time.Millisecond)

	if got := sender.calls.Load(); got != 1 {
		t.Errorf("expected one send for one message, got %d", got)
	}
}

func TestWorker_ReclaimsMessageOfDeadConsumer(t *testing.T) {
	client := testutil.NewRedisClient(t)
	ctx := context.Background()
	recorder := metrics.NewInMemory()
	sender := &fakeSender{}

	if err := client.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err(); err != nil {
		t.Fatalf("create group: %v", err)
	}
	pub := NewPublisher(client, testutil.DiscardLogger(), recorder)
	if err := pub.Dispatch(ctx, testutil.NewTestContactMessage(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	// A consumer reads the message and dies before acking it.
	_, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: "dead-consumer",
		Streams:  []string{StreamKey, ">"},
		Count:    1,
	}).Result()
	if err != nil {
		t.Fatalf("xreadgroup: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	startWorker(t, client, sender, recorder, func(w *Worker) {
		w.SetClaimInterval(10 * time.Millisecond)
		w.SetClaimIdle(50 * time.Millisecond)
		w.SetBatchSize(1)
	})
	waitFor(t, func() bool { return recorder.Snapshot().NotificationsProcessed[StatusSent] == 1 })

	if sender.count() != 1 {
		t.Errorf("expected one send, got %d", sender.count())
	}
	if n := pendingCount(t, client); n != 0 {
		t.Errorf("expected reclaimed message to be acked, got %d pending", n)
	}
}
