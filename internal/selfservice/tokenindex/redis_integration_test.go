//go:build integration

package tokenindex_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/selfservice/tokenindex"
	"gatehouse/pkg/platform/sentinel"
	"gatehouse/pkg/testutil/containers"
)

func TestRedisIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	index := tokenindex.NewRedisIndex(rc.Client)

	require.NoError(t, index.Register(ctx, "token-1", "VIS-1", time.Minute))

	recordID, err := index.Resolve(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "VIS-1", recordID)

	_, err = index.Resolve(ctx, "token-unknown")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, index.Remove(ctx, "token-1"))
	_, err = index.Resolve(ctx, "token-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedisIndexTTL(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	index := tokenindex.NewRedisIndex(rc.Client)

	require.NoError(t, index.Register(ctx, "token-short", "VIS-1", time.Second))

	_, err := index.Resolve(ctx, "token-short")
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = index.Resolve(ctx, "token-short")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
