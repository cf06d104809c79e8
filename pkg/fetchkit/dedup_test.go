package fetchkit_test

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

func TestResultCache_ArmThenStore(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](time.Minute)

	_, ok := cache.Resolve("GET v3/apps")
	assert.False(t, ok, "fresh cache must miss")

	assert.True(t, cache.Store("GET v3/apps", "first"), "store after miss must commit")

	value, ok := cache.Resolve("GET v3/apps")
	require.True(t, ok)
	assert.Equal(t, "first", value)
}

func TestResultCache_StoreWithoutArmIsNoOp(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](time.Minute)

	assert.False(t, cache.Store("GET v3/apps", "orphan"), "store against clean key must be dropped")

	_, ok := cache.Resolve("GET v3/apps")
	assert.False(t, ok)
}

func TestResultCache_OnlyOneStoreCommitsPerArm(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](time.Minute)

	_, ok := cache.Resolve("GET v3/apps")
	require.False(t, ok)

	assert.True(t, cache.Store("GET v3/apps", "winner"))
	assert.False(t, cache.Store("GET v3/apps", "stale-loser"), "second store in same cycle must be dropped")

	value, ok := cache.Resolve("GET v3/apps")
	require.True(t, ok)
	assert.Equal(t, "winner", value)
}

func TestResultCache_ConcurrentStores(t *testing.T) {
	t.Parallel()

	const workers = 20

	cache := fetchkit.NewResultCache[string](time.Minute)

	for i := 0; i < workers; i++ {
		_, ok := cache.Resolve("GET v3/apps")
		require.False(t, ok)
	}

	var (
		wg        sync.WaitGroup
		committed atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			if cache.Store("GET v3/apps", "result-"+strconv.Itoa(n)) {
				committed.Add(1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(1), committed.Load(), "exactly one concurrent store must commit")

	_, ok := cache.Resolve("GET v3/apps")
	assert.True(t, ok)
}

func TestResultCache_Invalidate(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](time.Minute)

	_, _ = cache.Resolve("GET v3/apps")
	require.True(t, cache.Store("GET v3/apps", "cached"))

	cache.Invalidate("GET v3/apps")

	_, ok := cache.Resolve("GET v3/apps")
	assert.False(t, ok, "invalidated key must miss")

	assert.True(t, cache.Store("GET v3/apps", "refetched"), "miss after invalidation re-arms the key")
}

func TestResultCache_InvalidateDisarms(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](time.Minute)

	_, _ = cache.Resolve("GET v3/apps")
	cache.Invalidate("GET v3/apps")

	assert.False(t, cache.Store("GET v3/apps", "late"), "store after invalidation must be dropped until re-armed")
}

func TestResultCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[string](20 * time.Millisecond)

	_, _ = cache.Resolve("GET v3/apps")
	require.True(t, cache.Store("GET v3/apps", "short-lived"))

	value, ok := cache.Resolve("GET v3/apps")
	require.True(t, ok)
	assert.Equal(t, "short-lived", value)

	time.Sleep(50 * time.Millisecond)

	_, ok = cache.Resolve("GET v3/apps")
	assert.False(t, ok, "expired entry must miss")
}

func TestResultCache_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	cache := fetchkit.NewResultCache[int](time.Minute)

	_, _ = cache.Resolve("a")
	_, _ = cache.Resolve("b")

	require.True(t, cache.Store("a", 1))
	require.True(t, cache.Store("b", 2))

	a, ok := cache.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)

	b, ok := cache.Resolve("b")
	require.True(t, ok)
	assert.Equal(t, 2, b)
}

func TestResultCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GET v3/apps", fetchkit.ResultCacheKey("", "GET v3/apps"))
	assert.Equal(t, "binding-1:GET v3/apps", fetchkit.ResultCacheKey("binding-1", "GET v3/apps"))
}
