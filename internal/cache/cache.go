package cache

import (
	"sync"
	"time"
)

// Cache is a generic thread-safe LRU cache with a hard capacity and an
// optional time-to-live.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*lruNode[K, V]
	lru      lruList[K, V]
	capacity int
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(K, V)

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

// New creates a cache holding at most capacity entries without expiry.
// A capacity of 0 or less means unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return NewTTL[K, V](capacity, 0, nil)
}

// NewTTL creates a cache whose entries also expire when not accessed for
// ttl. A ttl of 0 disables expiry. now defaults to time.Now.
func NewTTL[K comparable, V any](capacity int, ttl time.Duration, now func() time.Time) *Cache[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[K, V]{
		entries:  make(map[K]*lruNode[K, V]),
		capacity: capacity,
		ttl:      ttl,
		now:      now,
	}
}

// SetEvictHook registers fn to be called for every entry that leaves the
// cache other than through Delete: capacity eviction, expiry, replacement
// by Set, and Clear. fn runs with the cache lock held and must not call
// back into the cache.
func (c *Cache[K, V]) SetEvictHook(fn func(K, V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get retrieves a value from the cache and marks it most recently used.
// Expired entries are removed and reported as missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	node, ok := c.lookup(key, now)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	node.atime = now
	c.lru.moveToFront(node)
	return node.value, true
}

// Peek retrieves a value without touching its recency or expiry.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return node.value, true
}

// Set stores a value in the cache, replacing any existing entry.
// Expired entries are purged first; then, if the cache is over capacity,
// least recently used entries are evicted.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.insert(key, value, c.now())
}

// GetOrCreate returns cached value or creates it.
// Thread-safe: create is called under lock to prevent duplicate creation.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if node, ok := c.lookup(key, now); ok {
		c.hits++
		node.atime = now
		c.lru.moveToFront(node)
		return node.value
	}
	c.misses++

	value := create()
	c.insert(key, value, now)
	return value
}

// Delete removes an entry from the cache without calling the evict hook.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		return false
	}
	c.lru.unlink(node)
	delete(c.entries, key)
	return true
}

// Clear removes all entries from the cache, calling the evict hook for each.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for node := c.lru.head; node != nil; node = node.next {
			c.onEvict(node.key, node.value)
		}
	}
	c.entries = make(map[K]*lruNode[K, V])
	c.lru.clear()
}

// Purge removes every expired entry and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.purgeExpired(c.now())
}

// Len returns the number of entries in the cache, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Keys returns the keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.entries))
	for node := c.lru.head; node != nil; node = node.next {
		keys = append(keys, node.key)
	}
	return keys
}

// Capacity returns the capacity of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Len:         len(c.entries),
		Capacity:    c.capacity,
		Hits:        c.hits,
		Misses:      c.misses,
		HitRate:     hitRate,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

// lookup returns the live node for key, removing it if it has expired.
// Caller must hold c.mu.
func (c *Cache[K, V]) lookup(key K, now time.Time) (*lruNode[K, V], bool) {
	node, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(node, now) {
		c.remove(node)
		c.expirations++
		return nil, false
	}
	return node, true
}

// insert stores value under key. Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V, now time.Time) {
	if old, ok := c.entries[key]; ok {
		c.remove(old)
	}
	c.purgeExpired(now)

	node := &lruNode[K, V]{key: key, value: value, atime: now}
	c.entries[key] = node
	c.lru.pushFront(node)

	for c.capacity > 0 && c.lru.Len() > c.capacity {
		c.remove(c.lru.back())
		c.evictions++
	}
}

// purgeExpired walks from the least recently used end; since access times
// grow towards the head, it stops at the first live entry.
// Caller must hold c.mu.
func (c *Cache[K, V]) purgeExpired(now time.Time) int {
	if c.ttl <= 0 {
		return 0
	}
	n := 0
	for node := c.lru.back(); node != nil && c.expired(node, now); node = c.lru.back() {
		c.remove(node)
		c.expirations++
		n++
	}
	return n
}

func (c *Cache[K, V]) expired(node *lruNode[K, V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(node.atime) > c.ttl
}

// remove unlinks node and reports it to the evict hook.
// Caller must hold c.mu.
func (c *Cache[K, V]) remove(node *lruNode[K, V]) {
	c.lru.unlink(node)
	delete(c.entries, node.key)
	if c.onEvict != nil {
		c.onEvict(node.key, node.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the cache capacity (0 means unlimited).
	Capacity int
	// Hits is the number of lookups that found a live entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries dropped for capacity.
	Evictions uint64
	// Expirations is the number of entries dropped for staleness.
	Expirations uint64
}
