package fetchkit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ResultCache collapses concurrent identical requests into one outcome and
// serves bounded-freshness cached results.
//
// The discipline is arm-then-store: a Resolve miss arms the key, and only an
// armed key accepts the next Store. The arm flag is per key, not per call, so
// of N concurrent misses exactly one subsequent Store commits; the rest are
// discarded as already-cached. This also guards against a slow, now-stale
// response overwriting a fresher concurrent result.
//
// Keys are never actively evicted; staleness is enforced by TTL on read.
// Unbounded key growth is an accepted tradeoff of this design.
type ResultCache[V any] struct {
	values *ttlcache.Cache[string, V]
	armed  sync.Map // key -> *atomic.Bool
}

// NewResultCache creates a result cache whose entries stay fresh for ttl.
func NewResultCache[V any](ttl time.Duration) *ResultCache[V] {
	return &ResultCache[V]{
		values: ttlcache.New(
			ttlcache.WithTTL[string, V](ttl),
			ttlcache.WithDisableTouchOnHit[string, V](),
		),
	}
}

// Resolve returns the cached value for key when one is fresh. On a miss it
// arms the key so the next Store is accepted, and reports absent.
func (c *ResultCache[V]) Resolve(key string) (V, bool) {
	if item := c.values.Get(key); item != nil {
		return item.Value(), true
	}

	flag, _ := c.armed.LoadOrStore(key, &atomic.Bool{})
	flag.(*atomic.Bool).Store(true)

	var zero V

	return zero, false
}

// Store commits value under key only when the key is armed, disarming it.
// A Store against a clean key is an intentional no-op, not a failure.
func (c *ResultCache[V]) Store(key string, value V) bool {
	flag, ok := c.armed.Load(key)
	if !ok || !flag.(*atomic.Bool).CompareAndSwap(true, false) {
		return false
	}

	c.values.Set(key, value, ttlcache.DefaultTTL)

	return true
}

// Invalidate drops the cached value for key. The key must be re-armed by a
// Resolve miss before a new Store is accepted.
func (c *ResultCache[V]) Invalidate(key string) {
	c.values.Delete(key)

	if flag, ok := c.armed.Load(key); ok {
		flag.(*atomic.Bool).Store(false)
	}
}

// ResultCacheKey derives the cache key for a request identity from the
// endpoint path and a caller-supplied scope (e.g. a task or binding id).
func ResultCacheKey(scope, path string) string {
	if scope == "" {
		return path
	}

	return scope + ":" + path
}
