// Package routepath normalizes navigation paths into the canonical form the
// engine uses everywhere: as page-data cache keys, as history entries, and
// for the "is this already the active page" check.
package routepath

import (
	"errors"
	"strings"
)

// Path normalization errors.
var (
	ErrBackslashInPath = errors.New("path contains backslash")
	ErrNullByteInPath  = errors.New("path contains null byte")
)

// Normalizer produces cache keys from raw navigation paths.
//
// A cache key is the pathname with query and fragment stripped, slashes
// collapsed, the trailing slash removed (except root), and the configured
// base path applied. "/docs/intro?x=1#h", "/docs/intro?x=2" and
// "/docs/intro" all normalize to the same key.
type Normalizer struct {
	basePath string
}

// NewNormalizer creates a Normalizer for the given base path.
// A base path of "" or "/" means the app is mounted at the origin root.
func NewNormalizer(basePath string) *Normalizer {
	return &Normalizer{basePath: cleanBasePath(basePath)}
}

// BasePath returns the configured base path ("" when mounted at root).
func (n *Normalizer) BasePath() string {
	return n.basePath
}

// CacheKey normalizes a raw path into its canonical cache-key form.
func (n *Normalizer) CacheKey(raw string) (string, error) {
	path, err := Canonicalize(StripQueryFragment(raw))
	if err != nil {
		return "", err
	}
	if n.basePath == "" || path == n.basePath || strings.HasPrefix(path, n.basePath+"/") {
		return path, nil
	}
	if path == "/" {
		return n.basePath, nil
	}
	return n.basePath + path, nil
}

// HistoryEntry normalizes a raw path for the address bar: the pathname is
// canonicalized exactly like a cache key, but the query and fragment
// survive. StripQueryFragment of the result yields the cache key.
func (n *Normalizer) HistoryEntry(raw string) (string, error) {
	key, err := n.CacheKey(raw)
	if err != nil {
		return "", err
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return key + raw[i:], nil
	}
	return key, nil
}

// StripQueryFragment removes the query string and fragment from a path.
func StripQueryFragment(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Canonicalize normalizes a bare pathname (no query, no fragment):
//   - ensure a leading slash
//   - collapse repeated slashes
//   - remove the trailing slash (except for root "/")
//
// Backslashes and NUL bytes are rejected outright.
func Canonicalize(path string) (string, error) {
	if path == "" {
		return "/", nil
	}
	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") {
		return "", ErrNullByteInPath
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path, nil
}

// cleanBasePath normalizes a configured base path to "" (root) or
// "/prefix" with no trailing slash.
func cleanBasePath(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return ""
	}
	return "/" + base
}
