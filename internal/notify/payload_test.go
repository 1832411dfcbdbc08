package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/folio/folio/internal/model"
)

func TestNewPayload(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6000000, time.UTC)
	msg := &model.ContactMessage{
		ID:          "id-1",
		SenderName:  "Ada",
		SenderEmail: "ada@example.com",
		Subject:     "Hi",
		Content:     "Hello",
		Timestamp:   ts,
	}

	p := NewPayload("job-1", msg)

	if p.JobID != "job-1" || p.MessageID != "id-1" {
		t.Errorf("unexpected ids: %+v", p)
	}
	if p.SenderName != "Ada" || p.SenderEmail != "ada@example.com" || p.Subject != "Hi" || p.Content != "Hello" {
		t.Errorf("fields not copied: %+v", p)
	}
	if !p.SubmittedTime().Equal(ts) {
		t.Errorf("SubmittedTime = %s, want %s", p.SubmittedTime(), ts)
	}
}

func TestPayload_Validate(t *testing.T) {
	valid := Payload{MessageID: "m", SenderEmail: "a@example.com", SubmittedAt: 1}

	tests := []struct {
		name    string
		mutate  func(p *Payload)
		wantErr bool
	}{
		{"valid", func(p *Payload) {}, false},
		{"missing message id", func(p *Payload) { p.MessageID = "" }, true},
		{"missing sender email", func(p *Payload) { p.SenderEmail = "" }, true},
		{"missing timestamp", func(p *Payload) { p.SubmittedAt = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
