package module

import "sync"

// Cache holds loaded module handles keyed by module identity (route id or
// layout path). It is shared between ordinary navigation and prefetching, so
// a successful prefetch eliminates a later load.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Handle
}

// NewCache creates an empty module cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Handle)}
}

// Get returns the handle cached under the module identity, or nil.
func (c *Cache) Get(id string) *Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id]
}

// Set stores a handle, last writer wins.
func (c *Cache) Set(id string, h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = h
}

// Delete removes an entry. Used when purging a non-invocable handle and by
// the development hot-swap path.
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Handle)
}
