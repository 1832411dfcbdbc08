package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio/folio/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps each record as one row, one table per collection.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool, verifies it and applies the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the embedded schema files in name order.
// Every statement is idempotent.
func (s *PostgresStore) migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// InsertStatusCheck stores a status check row.
func (s *PostgresStore) InsertStatusCheck(ctx context.Context, sc *model.StatusCheck) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO status_checks (id, client_name, "timestamp") VALUES ($1, $2, $3)`,
		sc.ID, sc.ClientName, sc.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert status check %s: %w", sc.ID, ErrNotAcknowledged)
	}
	return nil
}

// ListStatusChecks returns up to limit status checks in insertion order.
func (s *PostgresStore) ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_name, "timestamp" FROM status_checks ORDER BY seq LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query status checks: %w", err)
	}
	defer rows.Close()

	checks := make([]*model.StatusCheck, 0)
	for rows.Next() {
		sc := &model.StatusCheck{}
		if err := rows.Scan(&sc.ID, &sc.ClientName, &sc.Timestamp); err != nil {
			return nil, fmt.Errorf("scan status check: %w", err)
		}
		sc.Timestamp = sc.Timestamp.UTC()
		checks = append(checks, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status checks: %w", err)
	}
	return checks, nil
}

// InsertContactMessage stores a contact submission row.
func (s *PostgresStore) InsertContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO contact_submissions (id, sender_name, sender_email, subject, content, "timestamp")
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.SenderName, msg.SenderEmail, msg.Subject, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert contact message %s: %w", msg.ID, ErrNotAcknowledged)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
