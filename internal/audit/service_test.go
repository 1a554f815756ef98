package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	svc.Record(ctx, Entry{ActorID: "reception", Action: ActionCheckIn, RecordID: "VIS-1"})

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Timestamp.IsZero())

	stamped := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.Record(ctx, Entry{ActorID: "reception", Action: ActionCheckOut, Timestamp: stamped})

	entries, err = store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.Equal(stamped), "explicit timestamps are kept")
}

func TestListNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i := 0; i < ListCap+20; i++ {
		require.NoError(t, store.Append(ctx, Entry{
			ActorID: "reception",
			Action:  ActionCheckIn,
			Details: fmt.Sprintf("entry %d", i),
		}))
	}

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, ListCap)
	assert.Equal(t, fmt.Sprintf("entry %d", ListCap+19), entries[0].Details)

	entries, err = store.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	entries, err = store.List(ctx, ListCap+1000)
	require.NoError(t, err)
	assert.Len(t, entries, ListCap)
}

type failingStore struct{}

func (failingStore) Append(context.Context, Entry) error { return errors.New("disk full") }
func (failingStore) List(context.Context, int) ([]Entry, error) {
	return nil, errors.New("disk full")
}

type capturedFailure struct {
	errType, message, source string
}

type captureRecorder struct {
	failures []capturedFailure
}

func (r *captureRecorder) RecordFailure(_ context.Context, errType, message, source string) {
	r.failures = append(r.failures, capturedFailure{errType, message, source})
}

func TestRecordSwallowsAppendFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	recorder := &captureRecorder{}
	svc.SetFailureRecorder(recorder)

	// Must not panic or propagate the store error.
	svc.Record(ctx, Entry{ActorID: "reception", Action: ActionCheckIn})

	require.Len(t, recorder.failures, 1)
	assert.Equal(t, "AUDIT_APPEND", recorder.failures[0].errType)
	assert.Equal(t, "audit", recorder.failures[0].source)
	assert.Contains(t, recorder.failures[0].message, "disk full")
}
