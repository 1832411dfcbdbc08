// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/folio/folio/internal/model"
)

// CreateStatusCheckRequest is the body of POST {prefix}/status.
type CreateStatusCheckRequest struct {
	ClientName string `json:"client_name" validate:"required,notblank"`
}

// CreateContactMessageRequest is the body of POST {prefix}/contact-messages.
type CreateContactMessageRequest struct {
	SenderName  string `json:"sender_name" validate:"required,notblank"`
	SenderEmail string `json:"sender_email" validate:"required,notblank,email"`
	Subject     string `json:"subject" validate:"required,notblank"`
	Content     string `json:"content" validate:"required,notblank"`
}

// ToInput converts the request into service input. Values are passed
// through untouched.
func (r CreateContactMessageRequest) ToInput() model.ContactMessageInput {
	return model.ContactMessageInput{
		SenderName:  r.SenderName,
		SenderEmail: r.SenderEmail,
		Subject:     r.Subject,
		Content:     r.Content,
	}
}

// StatusCheckResponse represents a status check in API responses.
type StatusCheckResponse struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContactMessageResponse represents a contact message in API responses.
type ContactMessageResponse struct {
	ID          string    `json:"id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageResponse carries a plain informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ToStatusCheckResponse converts a StatusCheck model to its DTO.
func ToStatusCheckResponse(sc *model.StatusCheck) StatusCheckResponse {
	return StatusCheckResponse{
		ID:         sc.ID,
		ClientName: sc.ClientName,
		Timestamp:  sc.Timestamp,
	}
}

// ToStatusCheckList converts a slice of status checks. The result is never
// nil so it always encodes as a JSON array.
func ToStatusCheckList(checks []*model.StatusCheck) []StatusCheckResponse {
	out := make([]StatusCheckResponse, 0, len(checks))
	for _, sc := range checks {
		out = append(out, ToStatusCheckResponse(sc))
	}
	return out
}

// ToContactMessageResponse converts a ContactMessage model to its DTO.
func ToContactMessageResponse(msg *model.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:          msg.ID,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		Subject:     msg.Subject,
		Content:     msg.Content,
		Timestamp:   msg.Timestamp,
	}
}
