package notify

import "errors"

// Sentinel errors for notification operations.
var (
	// ErrNotConfigured means relay credentials or the recipient are missing;
	// the notification is skipped.
	ErrNotConfigured = errors.New("notification relay not configured")
	// ErrInvalidPayload marks a queued payload that cannot be delivered.
	ErrInvalidPayload = errors.New("invalid notification payload")
)
