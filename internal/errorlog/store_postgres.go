package errorlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gatehouse/pkg/platform/sentinel"
)

// PostgresStore persists error log entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed error log store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, entry Entry) (int64, error) {
	metadata := []byte(entry.Metadata)
	if len(metadata) == 0 {
		metadata = nil
	}
	query := `
		INSERT INTO error_logs (type, message, source, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		entry.Type, entry.Message, entry.Source, metadata, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create error log entry: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `
		SELECT id, type, message, source, metadata, resolved, resolved_at, resolved_by, created_at
		FROM error_logs
		ORDER BY created_at DESC, id DESC
	`)
}

func (s *PostgresStore) ListUnresolved(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `
		SELECT id, type, message, source, metadata, resolved, resolved_at, resolved_by, created_at
		FROM error_logs
		WHERE NOT resolved
		ORDER BY created_at DESC, id DESC
	`)
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list error log entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var metadata []byte
		var resolvedAt sql.NullTime
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Message, &entry.Source,
			&metadata, &entry.Resolved, &resolvedAt, &entry.ResolvedBy, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log entry: %w", err)
		}
		entry.Metadata = metadata
		if resolvedAt.Valid {
			t := resolvedAt.Time
			entry.ResolvedAt = &t
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error log entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Resolve(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) error {
	query := `
		UPDATE error_logs
		SET resolved = TRUE, resolved_by = $2, resolved_at = $3
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, resolvedBy, resolvedAt)
	if err != nil {
		return fmt.Errorf("resolve error log entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve error log entry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
