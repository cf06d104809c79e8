package fetchkit

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Static errors for cache lookups.
var (
	ErrCacheKeyNotFound   = errors.New("key not found")
	ErrCacheEntryExpired  = errors.New("entry expired")
	ErrCacheEntryRequired = errors.New("cache entry is required")
)

// CacheEntry is one cached response body with its freshness bound.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry's freshness bound has passed.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache is the pluggable response-cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is an in-memory Cache bounded to maxSize entries, evicting the
// oldest entry when full.
type MemoryCache struct {
	cache *ttlcache.Cache[string, *CacheEntry]
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	opts := []ttlcache.Option[string, *CacheEntry]{
		ttlcache.WithDisableTouchOnHit[string, *CacheEntry](),
	}
	if maxSize > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *CacheEntry](uint64(maxSize)))
	}

	return &MemoryCache{cache: ttlcache.New(opts...)}
}

// Get retrieves a cached entry, failing when it is absent or expired.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, ErrCacheKeyNotFound
	}

	entry := item.Value()
	if entry.Expired() {
		c.cache.Delete(key)

		return nil, ErrCacheEntryExpired
	}

	return entry, nil
}

// Set stores an entry until its freshness bound.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if entry == nil {
		return ErrCacheEntryRequired
	}

	ttl := ttlcache.NoTTL
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
	}

	c.cache.Set(key, entry, ttl)

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.cache.DeleteAll()

	return nil
}

// Has reports whether a fresh entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Cleanup removes expired entries eagerly.
func (c *MemoryCache) Cleanup() {
	c.cache.DeleteExpired()

	for _, key := range c.cache.Keys() {
		if item := c.cache.Get(key); item != nil && item.Value().Expired() {
			c.cache.Delete(key)
		}
	}
}

// CacheStats tracks cache effectiveness.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
}

// GetHitRate returns the fraction of lookups served from cache.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which requests are cacheable.
type CachingPolicy struct {
	CacheGET     bool
	CachePOST    bool
	CacheErrors  bool
	IncludePaths []string
	ExcludePaths []string

	// DefaultTTL bounds entry freshness when the response carries none.
	DefaultTTL time.Duration
}

// DefaultCachingPolicy caches successful GET responses only.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:   true,
		DefaultTTL: 5 * time.Minute,
	}
}

// ShouldCache reports whether a response for (method, path, statusCode) is
// cacheable under the policy.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case "GET":
		if !p.CacheGET {
			return false
		}
	case "POST":
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if !p.CacheErrors && (statusCode < 200 || statusCode >= 300) {
		return false
	}

	for _, excluded := range p.ExcludePaths {
		if strings.HasPrefix(path, excluded) {
			return false
		}
	}

	if len(p.IncludePaths) > 0 {
		for _, included := range p.IncludePaths {
			if strings.HasPrefix(path, included) {
				return true
			}
		}

		return false
	}

	return true
}

// CacheManager layers key derivation and statistics over a Cache backend.
type CacheManager struct {
	backend Cache
	logger  Logger

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// NewCacheManager creates a cache manager. A nil backend disables caching.
func NewCacheManager(backend Cache, logger Logger) *CacheManager {
	return &CacheManager{backend: backend, logger: logger}
}

// GetCacheKey derives a deterministic key from a request identity.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	if len(params) == 0 {
		return method + ":" + path
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder

	builder.WriteString(method)
	builder.WriteString(":")
	builder.WriteString(path)
	builder.WriteString(":")

	for i, key := range keys {
		if i > 0 {
			builder.WriteString("&")
		}

		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(params[key])
	}

	return builder.String()
}

// Get retrieves cached data for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	if m.backend == nil {
		m.misses.Add(1)

		return nil, ErrCacheKeyNotFound
	}

	entry, err := m.backend.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		return nil, err
	}

	m.hits.Add(1)

	return entry.Data, nil
}

// Set stores data under key for ttl.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data with its entity tag under key for ttl.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if m.backend == nil {
		return nil
	}

	entry := &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	}

	err := m.backend.Set(ctx, key, entry)
	if err != nil {
		return err
	}

	m.sets.Add(1)

	return nil
}

// Delete removes the entry for key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	if m.backend == nil {
		return nil
	}

	err := m.backend.Delete(ctx, key)
	if err != nil {
		return err
	}

	m.deletes.Add(1)

	return nil
}

// GetStats returns a snapshot of the manager's counters.
func (m *CacheManager) GetStats() CacheStats {
	return CacheStats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Sets:    m.sets.Load(),
		Deletes: m.deletes.Load(),
	}
}
