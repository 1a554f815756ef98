package visitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/pkg/platform/sentinel"
)

func memRecord(recordID string, checkIn time.Time) Record {
	return Record{
		RecordID:    recordID,
		FullName:    "Ada Lovelace",
		VisitorType: TypeVisitor,
		CheckInTime: checkIn,
		Status:      StatusIn,
		RecordedBy:  "reception",
	}
}

func TestInMemoryStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	id, err := store.Create(ctx, memRecord("VIS-1", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := store.FindByRecordID(ctx, "VIS-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, StatusIn, got.Status)

	_, err = store.Create(ctx, memRecord("VIS-1", time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	_, err = store.FindByRecordID(ctx, "VIS-missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreFindByQRCode(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	record := memRecord("VIS-1", time.Now())
	record.QRCode = "token-abc"
	_, err := store.Create(ctx, record)
	require.NoError(t, err)

	got, err := store.FindByQRCode(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "VIS-1", got.RecordID)

	_, err = store.FindByQRCode(ctx, "token-unknown")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreCompleteCheckOut(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_, err := store.Create(ctx, memRecord("VIS-1", time.Now()))
	require.NoError(t, err)

	at := time.Now()
	require.NoError(t, store.CompleteCheckOut(ctx, "VIS-1", at))

	got, err := store.FindByRecordID(ctx, "VIS-1")
	require.NoError(t, err)
	assert.Equal(t, StatusOut, got.Status)
	require.NotNil(t, got.CheckOutTime)
	assert.True(t, got.CheckOutTime.Equal(at))

	err = store.CompleteCheckOut(ctx, "VIS-1", time.Now())
	assert.ErrorIs(t, err, sentinel.ErrAlreadyCheckedOut)

	err = store.CompleteCheckOut(ctx, "VIS-missing", time.Now())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreListOrderingAndActive(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	base := time.Now()
	_, err := store.Create(ctx, memRecord("VIS-old", base.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = store.Create(ctx, memRecord("VIS-new", base))
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "VIS-new", all[0].RecordID)
	assert.Equal(t, "VIS-old", all[1].RecordID)

	require.NoError(t, store.CompleteCheckOut(ctx, "VIS-new", base.Add(time.Minute)))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "VIS-old", active[0].RecordID)
}

func TestInMemoryStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_, err := store.Create(ctx, memRecord("VIS-1", time.Now()))
	require.NoError(t, err)

	company := "Initech"
	require.NoError(t, store.Update(ctx, "VIS-1", Patch{Company: &company}))

	got, err := store.FindByRecordID(ctx, "VIS-1")
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.Company)
	assert.Equal(t, "Ada Lovelace", got.FullName)

	assert.ErrorIs(t, store.Update(ctx, "VIS-missing", Patch{Company: &company}), sentinel.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "VIS-1"))
	assert.ErrorIs(t, store.Delete(ctx, "VIS-1"), sentinel.ErrNotFound)
}

func TestInMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	dayStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// Checked in yesterday, still pending.
	_, err := store.Create(ctx, memRecord("VIS-yesterday", dayStart.Add(-2*time.Hour)))
	require.NoError(t, err)

	// Checked in and out today.
	_, err = store.Create(ctx, memRecord("VIS-done", dayStart.Add(9*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, store.CompleteCheckOut(ctx, "VIS-done", dayStart.Add(10*time.Hour)))

	// Checked in today, still inside.
	_, err = store.Create(ctx, memRecord("VIS-inside", dayStart.Add(11*time.Hour)))
	require.NoError(t, err)

	stats, err := store.Stats(ctx, dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodayIn)
	assert.Equal(t, 1, stats.TodayOut)
	assert.Equal(t, 2, stats.Pending)
}
