// Package cache provides the bounded caches used by the trail pipeline.
//
// # Cache[K, V]
//
// A mutex-guarded LRU cache with a hard capacity and an optional
// time-to-live. Entries are evicted least-recently-accessed first when the
// capacity is exceeded; entries not accessed within the TTL are treated as
// absent and purged on the next write.
//
//	c := cache.NewTTL[uint64, *Table](10, 30*time.Second, time.Now)
//	c.SetEvictHook(func(_ uint64, t *Table) { t.Release() })
//	t := c.GetOrCreate(key, build)
//
// # Hashing
//
// StringHasher (FNV-1a, 64 bit) turns serialized descriptions into compact
// keys.
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
