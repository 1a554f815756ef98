package errorlog

import (
	"context"
	"time"
)

// Store persists error log entries.
type Store interface {
	Create(ctx context.Context, entry Entry) (int64, error)
	List(ctx context.Context) ([]Entry, error)
	ListUnresolved(ctx context.Context) ([]Entry, error)
	// Resolve marks an entry resolved. Resolving an already-resolved entry
	// rewrites resolved_by/resolved_at without error. Returns
	// sentinel.ErrNotFound when no entry has the given id.
	Resolve(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) error
}
