package visitor

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordIDFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	id := NewRecordID("VIS", now)

	parts := strings.SplitN(id, "-", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "VIS", parts[0])
	assert.Equal(t, "1748770200000", parts[1])
	assert.Len(t, parts[2], recordIDSuffixLen)
}

func TestNewRecordIDConcurrentUniqueness(t *testing.T) {
	const n = 1000
	now := time.Now()

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = NewRecordID("VIS", now)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate record id %s", id)
		seen[id] = struct{}{}
	}
}
