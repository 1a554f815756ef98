package audit

import "context"

// ListCap bounds how many entries a single list call returns.
const ListCap = 500

// Store persists audit entries. Append-only: nothing updates or deletes rows.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// List returns up to limit entries, newest first. Limits above ListCap
	// are clamped by implementations.
	List(ctx context.Context, limit int) ([]Entry, error)
}
