package page

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/routepath"
)

// Loader fetches and caches page descriptors.
type Loader struct {
	client *http.Client
	origin string
	norm   *routepath.Normalizer
	cache  *Cache
	logger *slog.Logger

	mu         sync.RWMutex
	translator Translator
}

// NewLoader creates a page loader.
//
// origin is the scheme+host documents are fetched from (the current
// document's origin in a live deployment, an httptest server in tests).
func NewLoader(client *http.Client, origin string, norm *routepath.Normalizer, cache *Cache, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client:     client,
		origin:     origin,
		norm:       norm,
		cache:      cache,
		logger:     logger.With("component", "page-loader"),
		translator: IdentityTranslator,
	}
}

// Normalizer returns the loader's path normalizer.
func (l *Loader) Normalizer() *routepath.Normalizer {
	return l.norm
}

// Cache returns the loader's descriptor cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Translator returns the most recently extracted translation lookup. It is
// never nil; before any document has been loaded it is the identity lookup.
func (l *Loader) Translator() Translator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.translator
}

// Load returns the descriptor for a path.
//
// The path is normalized into its cache key. If it names the currently
// active page the known descriptor is returned without touching the network;
// a cache hit likewise. Otherwise the document is fetched, the translation
// payload installed (identity on absence or failure), the reserved data
// block parsed, and the result cached.
func (l *Loader) Load(ctx context.Context, nav *NavigationContext, rawPath string) (*Descriptor, error) {
	key, err := l.norm.CacheKey(rawPath)
	if err != nil {
		return nil, errors.New("E202").WithPath(rawPath).Wrap(err)
	}

	if nav != nil && nav.Descriptor != nil && nav.Path == key {
		return nav.Descriptor, nil
	}
	if d := l.cache.Get(key); d != nil {
		return d, nil
	}

	doc, err := l.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.translator = ExtractTranslator(doc)
	l.mu.Unlock()

	d, err := ExtractDescriptor(doc)
	if err != nil {
		return nil, errors.FromError(err, "E202").WithPath(key)
	}

	l.cache.Set(key, d)
	l.logger.Debug("descriptor loaded", "path", key, "route", d.RouteID)
	return d, nil
}

func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.origin+path, nil)
	if err != nil {
		return nil, errors.New("E101").WithPath(path).Wrap(err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.New("E101").WithPath(path).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("E102").WithPath(path).
			WithDetail(resp.Status)
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("E101").WithPath(path).Wrap(err)
	}
	return doc, nil
}
