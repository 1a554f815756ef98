package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection. The returned pool
// is process-wide and shared by all requests.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables this service needs. Schema management is
// deliberately create-if-not-exists only; there is no migration tooling.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS app_users (
			id SERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			credential TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS visitor_records (
			id SERIAL PRIMARY KEY,
			record_id TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL,
			visitor_type TEXT NOT NULL DEFAULT 'visitor',
			id_number TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			visitor_card_photo TEXT NOT NULL DEFAULT '',
			id_card_photo TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			access_area TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			vehicle_plate TEXT NOT NULL DEFAULT '',
			check_in_time TIMESTAMPTZ NOT NULL,
			check_out_time TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'IN',
			recorded_by TEXT NOT NULL,
			consent_type TEXT NOT NULL DEFAULT '',
			consent_time TIMESTAMPTZ,
			consent_signature TEXT NOT NULL DEFAULT '',
			qr_code TEXT NOT NULL DEFAULT '',
			qr_expiry TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visitor_records_status ON visitor_records (status)`,
		`CREATE INDEX IF NOT EXISTS idx_visitor_records_qr_code ON visitor_records (qr_code)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id SERIAL PRIMARY KEY,
			record_id TEXT,
			actor_id TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS error_logs (
			id SERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			metadata JSONB,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ,
			resolved_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
