// Package notify delivers operator notifications for new contact messages.
//
// The request path enqueues a Payload onto a Redis stream (Publisher). A
// Worker in a consumer group reads the stream, renders the email and hands
// it to a Mailer. Delivery failures are dead-lettered, never retried.
package notify

import (
	"fmt"
	"time"

	"github.com/folio/folio/internal/model"
)

// Payload is the queued form of a contact message.
type Payload struct {
	JobID       string `json:"job_id"`
	MessageID   string `json:"message_id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	SubmittedAt int64  `json:"submitted_at"` // Unix milliseconds
}

// NewPayload converts a persisted contact message into a queue payload.
func NewPayload(jobID string, msg *model.ContactMessage) Payload {
	return Payload{
		JobID:       jobID,
		MessageID:   msg.ID,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		Subject:     msg.Subject,
		Content:     msg.Content,
		SubmittedAt: msg.Timestamp.UnixMilli(),
	}
}

// SubmittedTime returns SubmittedAt as a UTC time.
func (p Payload) SubmittedTime() time.Time {
	return time.UnixMilli(p.SubmittedAt).UTC()
}

// Validate checks the fields the worker needs to build an email.
func (p Payload) Validate() error {
	if p.MessageID == "" {
		return fmt.Errorf("%w: message_id is required", ErrInvalidPayload)
	}
	if p.SenderEmail == "" {
		return fmt.Errorf("%w: sender_email is required", ErrInvalidPayload)
	}
	if p.SubmittedAt <= 0 {
		return fmt.Errorf("%w: submitted_at must be set", ErrInvalidPayload)
	}
	return nil
}
