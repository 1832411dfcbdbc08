// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio/folio/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// NewRedisClient connects to TEST_REDIS_URL, flushes the database and
// closes the client when the test ends. Skips when the variable is unset.
func NewRedisClient(t testing.TB) *redis.Client {
	t.Helper()
	url := RequireEnv(t, "TEST_REDIS_URL")

	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := flushRedis(ctx, client); err != nil {
		client.Close()
		t.Fatalf("flush redis: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// flushRedis clears the current Redis database.
func flushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestStatusCheck creates a status check with sensible defaults.
func NewTestStatusCheck(t testing.TB, clientName string) *model.StatusCheck {
	t.Helper()
	return &model.StatusCheck{
		ID:         UniqueID("sc"),
		ClientName: clientName,
		Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewTestContactMessage creates a contact message with sensible defaults.
func NewTestContactMessage(t testing.TB) *model.ContactMessage {
	t.Helper()
	return &model.ContactMessage{
		ID:          UniqueID("msg"),
		SenderName:  "Grace Hopper",
		SenderEmail: "grace@example.com",
		Subject:     "Compilers",
		Content:     "It's easier to ask forgiveness than it is to get permission.",
		Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// OptionalEnv returns an environment variable, or "" when unset.
// Use it when a test can run against any one of several backends.
func OptionalEnv(key string) string {
	return os.Getenv(key)
}
