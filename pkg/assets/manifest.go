// Package assets fetches serialized module source for the module loader.
//
// The build step emits a manifest.json mapping module identities to their
// fingerprinted bundle paths:
//
//	{
//	  "routes/home": "routes/home.a1b2c3d4.js",
//	  "layouts/site": "layouts/site.e5f6g7h8.js"
//	}
//
// Sources consult the manifest to turn a module identity into the path of
// the bundle that carries it, then fetch that bundle from an HTTP origin or
// an S3 bucket:
//
//	manifest, _ := assets.ParseManifest(data)
//	source := assets.NewHTTPSource(nil, origin, manifest, nil)
//	modules := module.NewLoader(cache, logger, module.WithSource(source))
package assets

import (
	"encoding/json"
	"sync"
)

// Manifest maps module identities to fingerprinted bundle paths. It is safe
// for concurrent use; devsync may swap entries while navigations read them.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewManifest creates an empty manifest. An empty manifest resolves every
// identity to itself, which is the development-mode behavior where bundles
// are not fingerprinted.
func NewManifest() *Manifest {
	return &Manifest{entries: make(map[string]string)}
}

// ParseManifest parses manifest.json content.
func ParseManifest(data []byte) (*Manifest, error) {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Manifest{entries: entries}, nil
}

// Resolve returns the bundle path for a module identity. Unknown identities
// pass through unchanged.
func (m *Manifest) Resolve(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path, ok := m.entries[id]; ok {
		return path
	}
	return id
}

// Set installs or replaces one mapping.
func (m *Manifest) Set(id, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = path
}

// Len returns the number of mappings.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
