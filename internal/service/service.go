// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/folio/folio/internal/model"
)

// Service errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("failed to persist record")
)

// StatusStore persists status checks.
type StatusStore interface {
	InsertStatusCheck(ctx context.Context, sc *model.StatusCheck) error
	ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error)
}

// ContactStore persists contact messages.
type ContactStore interface {
	InsertContactMessage(ctx context.Context, msg *model.ContactMessage) error
}

// Dispatcher hands a stored contact message to the notification pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *model.ContactMessage) error
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
