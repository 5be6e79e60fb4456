package localid

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefixAndFormat(t *testing.T) {
	id := New()
	require.True(t, strings.HasPrefix(id, Prefix))
	_, err := strconv.ParseInt(strings.TrimPrefix(id, Prefix), 10, 64)
	assert.NoError(t, err, "suffix must be a numeric timestamp")
}

func TestNewStrictlyIncreasing(t *testing.T) {
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := New()
		n, err := strconv.ParseInt(strings.TrimPrefix(id, Prefix), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestNewConcurrentUniqueness(t *testing.T) {
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := New()
				mu.Lock()
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal(New()))
	assert.True(t, IsLocal("local_1700000000000000000"))
	assert.False(t, IsLocal("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, IsLocal(""))
}
