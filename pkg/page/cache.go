package page

import "sync"

// Cache holds fetched page descriptors keyed by normalized path.
//
// One entry per normalized path; entries are never expired during a page's
// life. The cache is constructed once at engine bootstrap and passed by
// reference to every collaborator, so tests can plug their own instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

// NewCache creates an empty descriptor cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Descriptor)}
}

// Get returns the descriptor cached under the normalized path, or nil.
func (c *Cache) Get(path string) *Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[path]
}

// Set stores a descriptor under its normalized path, last writer wins.
func (c *Cache) Set(path string, d *Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = d
}

// Delete removes an entry.
func (c *Cache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Descriptor)
}
