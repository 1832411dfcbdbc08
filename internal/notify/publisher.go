package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/folio/folio/internal/metrics"
	"github.com/folio/folio/internal/model"
)

const (
	// StreamKey is the Redis stream for pending notifications.
	StreamKey = "stream:contact_notifications"

	// DeadLetterStreamKey receives notifications that could not be delivered.
	DeadLetterStreamKey = "stream:contact_notifications:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 10000

	// DefaultPublishTimeout is the max time to wait for Redis on enqueue.
	DefaultPublishTimeout = 500 * time.Millisecond
)

// Publisher enqueues notification payloads to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration
}

// NewPublisher creates a notification publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "notify.publisher"),
		metrics: recorder,
		timeout: DefaultPublishTimeout,
	}
}

// SetTimeout overrides the default publish timeout.
func (p *Publisher) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// Publish adds a payload to the stream and returns its stream ID.
func (p *Publisher) Publish(ctx context.Context, payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}
	return id, nil
}

// Dispatch enqueues the notification for a stored contact message.
//
// The enqueue is detached from ctx cancellation so a client disconnecting
// after the write does not drop the notification; it is bounded by the
// publish timeout instead.
func (p *Publisher) Dispatch(ctx context.Context, msg *model.ContactMessage) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	payload := NewPayload(ulid.Make().String(), msg)
	streamID, err := p.Publish(ctx, payload)
	if err != nil {
		p.metrics.IncNotificationEnqueued("dropped")
		return fmt.Errorf("enqueue notification for %s: %w", msg.ID, err)
	}

	p.metrics.IncNotificationEnqueued("success")
	p.logger.Debug("notification enqueued",
		"message_id", msg.ID,
		"job_id", payload.JobID,
		"stream_id", streamID,
	)
	return nil
}
