package session

import (
	"sync"

	"github.com/chorus-bot/chorus/internal/models"
)

// MetadataCache maps queued-track IDs to display metadata.
//
// Entries are immutable once stored. The cache is shared across all guild
// sessions; reads vastly outnumber writes, hence the RWMutex. An optional
// bound evicts the oldest entry on overflow. Insertion order, not LRU:
// queued tracks age out in roughly the order they were enqueued.
type MetadataCache struct {
	mu         sync.RWMutex
	entries    map[string]models.TrackMetadata
	order      []string
	maxEntries int
}

// NewMetadataCache creates a cache bounded to maxEntries. Zero means
// unbounded.
func NewMetadataCache(maxEntries int) *MetadataCache {
	return &MetadataCache{
		entries:    make(map[string]models.TrackMetadata),
		maxEntries: maxEntries,
	}
}

// Put stores metadata under the given track ID. Re-putting an existing ID
// overwrites the value without consuming a new slot.
func (c *MetadataCache) Put(id string, md models.TrackMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists {
		c.order = append(c.order, id)
		if c.maxEntries > 0 && len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[id] = md
}

// Get returns the metadata stored under id.
func (c *MetadataCache) Get(id string) (models.TrackMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	md, ok := c.entries[id]
	return md, ok
}

// Len returns the number of cached entries.
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
