package cache

import (
	"sync"
	"sync/atomic"

	"github.com/halfpix/pentimento/codec"
)

// DefaultBudgetMB is used when a non-positive budget is requested.
const DefaultBudgetMB = 256

// BlobCache is a thread-safe LRU cache of encoded pixel blobs, bounded by
// a byte budget rather than an entry count: one multi-megapixel blob costs
// what it costs.
//
// Reads take a shared lock and tolerate misses; eviction happens only
// inside Set, so a single writer owns insert/evict. Statistics are atomic
// for zero-allocation reads.
type BlobCache struct {
	mu      sync.RWMutex
	entries map[string]*blobEntry
	lru     *lruList[string]
	budget  int // bytes
	used    int // bytes

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type blobEntry struct {
	blob *codec.EncodedBlob
	size int
	node *lruNode[string]
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	UsedBytes int
	Budget    int
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}

// NewBlobCache creates a cache bounded by budgetMB megabytes.
// Non-positive budgets default to DefaultBudgetMB.
func NewBlobCache(budgetMB int) *BlobCache {
	if budgetMB <= 0 {
		budgetMB = DefaultBudgetMB
	}
	return &BlobCache{
		entries: make(map[string]*blobEntry),
		lru:     newLRUList[string](),
		budget:  budgetMB * 1024 * 1024,
	}
}

// Get retrieves a cached blob by key. Returns (nil, false) on a miss;
// callers regenerate the blob instead of treating this as an error.
func (c *BlobCache) Get(key string) (*codec.EncodedBlob, bool) {
	c.mu.RLock()
	_, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil, false
	}

	// Upgrade to a write lock for the recency update. Re-check: the entry
	// may have been evicted between the two locks; that is just a miss.
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(entry.node)
	blob := entry.blob
	c.mu.Unlock()

	c.hits.Add(1)
	return blob, true
}

// Set stores a blob under key, evicting least recently used entries until
// the cache fits its budget. A blob larger than the whole budget is not
// cached at all. The blob is stored as-is; callers must not modify it
// after caching.
func (c *BlobCache) Set(key string, blob *codec.EncodedBlob) {
	if blob == nil {
		return
	}
	size := blob.Size()
	if size > c.budget {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.used += size - existing.size
		existing.blob = blob
		existing.size = size
		c.lru.MoveToFront(existing.node)
	} else {
		node := c.lru.PushFront(key)
		c.entries[key] = &blobEntry{blob: blob, size: size, node: node}
		c.used += size
	}

	for c.used > c.budget {
		oldest, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		if evicted, ok := c.entries[oldest]; ok {
			c.used -= evicted.size
			delete(c.entries, oldest)
			c.evictions.Add(1)
		}
	}
}

// Delete removes an entry. Returns true if it was present.
func (c *BlobCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	c.lru.Remove(entry.node)
	c.used -= entry.size
	delete(c.entries, key)
	return true
}

// Clear removes all entries.
func (c *BlobCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*blobEntry)
	c.lru.Clear()
	c.used = 0
}

// Len returns the number of cached blobs.
func (c *BlobCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// UsedBytes returns the current payload total in bytes.
func (c *BlobCache) UsedBytes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.used
}

// Budget returns the byte budget.
func (c *BlobCache) Budget() int {
	return c.budget
}

// CacheStats returns current counters.
func (c *BlobCache) CacheStats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		UsedBytes: c.UsedBytes(),
		Budget:    c.budget,
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// ResetStats resets the counters to zero.
func (c *BlobCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
