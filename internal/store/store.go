// Package store provides the document store adapters holding status checks
// and contact submissions. Both collections are append-only.
package store

import (
	"context"
	"errors"

	"github.com/folio/folio/internal/model"
)

// Collection names shared by all drivers.
const (
	StatusChecksCollection       = "status_checks"
	ContactSubmissionsCollection = "contact_submissions"
)

// Sentinel errors for store operations.
var (
	// ErrNotAcknowledged is returned when the backend did not confirm a write.
	ErrNotAcknowledged = errors.New("write not acknowledged")
)

// Store is implemented by every document store driver.
type Store interface {
	InsertStatusCheck(ctx context.Context, sc *model.StatusCheck) error
	ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error)
	InsertContactMessage(ctx context.Context, msg *model.ContactMessage) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > model.MaxStatusChecks {
		return model.MaxStatusChecks
	}
	return limit
}
