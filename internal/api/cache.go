package api

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sells-group/district-map/internal/area"
)

// FeatureCache is a concurrent-safe LRU of encoded area documents. The
// dataset never changes while the server runs, so entries do not expire.
type FeatureCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

type featureEntry struct {
	key  string
	data []byte
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewFeatureCache creates a cache holding at most maxEntries documents.
func NewFeatureCache(maxEntries int) *FeatureCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &FeatureCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func featureKey(g area.Granularity, code string) string {
	return string(g) + "/" + code
}

// Get returns the cached document, or nil on a miss.
func (c *FeatureCache) Get(g area.Granularity, code string) []byte {
	key := featureKey(g, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*featureEntry).data
}

// Put stores a document, evicting the least recently used one when full.
func (c *FeatureCache) Put(g area.Granularity, code string, data []byte) {
	key := featureKey(g, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*featureEntry).data = data
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*featureEntry).key)
	}
	c.entries[key] = c.order.PushFront(&featureEntry{key: key, data: data})
}

// Stats returns cache performance statistics.
func (c *FeatureCache) Stats() CacheStats {
	c.mu.Lock()
	entries := c.order.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}
