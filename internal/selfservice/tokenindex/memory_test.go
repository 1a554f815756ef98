package tokenindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/pkg/platform/sentinel"
)

func TestMemoryIndexRegisterResolveRemove(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	require.NoError(t, index.Register(ctx, "token-1", "VIS-1", time.Hour))

	recordID, err := index.Resolve(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "VIS-1", recordID)

	_, err = index.Resolve(ctx, "token-unknown")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, index.Remove(ctx, "token-1"))
	_, err = index.Resolve(ctx, "token-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Removing an absent token is a no-op.
	require.NoError(t, index.Remove(ctx, "token-1"))
}

func TestMemoryIndexExpiry(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	index.now = func() time.Time { return now }

	require.NoError(t, index.Register(ctx, "token-1", "VIS-1", time.Hour))

	recordID, err := index.Resolve(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "VIS-1", recordID)

	now = now.Add(2 * time.Hour)
	_, err = index.Resolve(ctx, "token-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// The expired entry was dropped, not just hidden.
	index.mu.RLock()
	_, stillThere := index.entries["token-1"]
	index.mu.RUnlock()
	assert.False(t, stillThere)
}
