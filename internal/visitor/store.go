package visitor

import (
	"context"
	"time"
)

// Store persists visitor records. Implementations enforce record_id
// uniqueness (sentinel.ErrConflict) and the one-way IN to OUT transition:
// CompleteCheckOut only succeeds against a record that is still IN.
type Store interface {
	Create(ctx context.Context, record Record) (int64, error)
	List(ctx context.Context) ([]Record, error)
	ListActive(ctx context.Context) ([]Record, error)
	FindByRecordID(ctx context.Context, recordID string) (Record, error)
	FindByQRCode(ctx context.Context, token string) (Record, error)
	// CompleteCheckOut atomically transitions IN -> OUT and stamps
	// check_out_time. Returns sentinel.ErrNotFound when the record does not
	// exist and sentinel.ErrAlreadyCheckedOut when it is already OUT.
	CompleteCheckOut(ctx context.Context, recordID string, at time.Time) error
	Update(ctx context.Context, recordID string, patch Patch) error
	Delete(ctx context.Context, recordID string) error
	// Stats counts check-ins and check-outs within [dayStart, dayEnd) plus
	// all records still IN regardless of day.
	Stats(ctx context.Context, dayStart, dayEnd time.Time) (DailyStats, error)
}
