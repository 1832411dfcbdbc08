package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Factory builds new records with a server-assigned id and creation time.
// Timestamps are truncated to milliseconds, the resolution both stores
// keep, and never go backwards for records built by the same Factory.
// A Factory is safe for concurrent use.
type Factory struct {
	mu    sync.Mutex
	last  time.Time
	now   func() time.Time
	newID func() string
}

// NewFactory returns a Factory using the wall clock and random UUIDs.
func NewFactory() *Factory {
	return &Factory{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// NewStatusCheck builds a StatusCheck for the given client.
func (f *Factory) NewStatusCheck(clientName string) *StatusCheck {
	id, ts := f.stamp()
	return &StatusCheck{
		ID:         id,
		ClientName: clientName,
		Timestamp:  ts,
	}
}

// NewContactMessage builds a ContactMessage from client input.
// Input fields are copied verbatim.
func (f *Factory) NewContactMessage(in ContactMessageInput) *ContactMessage {
	id, ts := f.stamp()
	return &ContactMessage{
		ID:          id,
		SenderName:  in.SenderName,
		SenderEmail: in.SenderEmail,
		Subject:     in.Subject,
		Content:     in.Content,
		Timestamp:   ts,
	}
}

func (f *Factory) stamp() (string, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ts := f.now().UTC().Truncate(time.Millisecond)
	if ts.Before(f.last) {
		ts = f.last
	}
	f.last = ts

	return f.newID(), ts
}
