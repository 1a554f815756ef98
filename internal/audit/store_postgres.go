package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	recordID := sql.NullString{String: entry.RecordID, Valid: entry.RecordID != ""}
	query := `
		INSERT INTO audit_logs (record_id, actor_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		recordID, entry.ActorID, string(entry.Action), entry.Details, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > ListCap {
		limit = ListCap
	}
	query := `
		SELECT id, record_id, actor_id, action, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var recordID sql.NullString
		var action string
		if err := rows.Scan(&entry.ID, &recordID, &entry.ActorID, &action, &entry.Details, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.RecordID = recordID.String
		entry.Action = Action(action)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
