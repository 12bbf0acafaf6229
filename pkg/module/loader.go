package module

import (
	"context"
	"log/slog"
	"sync"

	"github.com/strada-dev/strada/internal/errors"
)

// Source fetches serialized module code by module identity. Implementations
// live in pkg/assets (HTTP bundle origin, S3 bucket).
type Source interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Compiler turns serialized module source into an export. This is the
// inline-data execution collaborator: the hosting environment supplies it,
// the engine only drives it.
type Compiler interface {
	Compile(id string, source []byte) (any, error)
}

// Loader resolves module identities into invocable handles.
//
// Resolution order: cached handle (purging it once if it is not invocable),
// host-registered export, remote source plus compiler. The tag probing
// happens once per load; see Resolve.
type Loader struct {
	cache    *Cache
	source   Source
	compiler Compiler
	logger   *slog.Logger

	mu       sync.RWMutex
	registry map[string]any
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSource sets the remote source for serialized module code.
func WithSource(s Source) LoaderOption {
	return func(l *Loader) { l.source = s }
}

// WithCompiler sets the serialized-source compiler.
func WithCompiler(c Compiler) LoaderOption {
	return func(l *Loader) { l.compiler = c }
}

// NewLoader creates a module loader over the given cache.
func NewLoader(cache *Cache, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		cache:    cache,
		logger:   logger.With("component", "module-loader"),
		registry: make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cache returns the loader's module cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Register installs a host-provided export under a module identity.
// Statically linked routes and layouts register themselves at bootstrap.
func (l *Loader) Register(id string, export any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registry[id] = export
}

// Load returns the invocable handle for a module identity.
//
// A cached handle whose export turned out not to be invocable is purged and
// the identity re-resolved exactly once; if resolution fails again the error
// is returned rather than retried.
func (l *Loader) Load(ctx context.Context, id string) (*Handle, error) {
	if h := l.cache.Get(id); h != nil {
		if h.Invocable() {
			return h, nil
		}
		l.logger.Warn("purging non-invocable cached module", "module", id)
		l.cache.Delete(id)
	}

	export, err := l.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	h, err := Resolve(id, export)
	if err != nil {
		return nil, err
	}
	l.cache.Set(id, h)
	return h, nil
}

// LoadSerialized compiles serialized module source (a batch prefetch entry
// or a hot-swapped bundle) and caches the resulting handle.
func (l *Loader) LoadSerialized(ctx context.Context, id string, source []byte) (*Handle, error) {
	if l.compiler == nil {
		return nil, errors.New("E303").WithDetail("no compiler configured")
	}
	export, err := l.compiler.Compile(id, source)
	if err != nil {
		return nil, errors.New("E303").WithDetail(id).Wrap(err)
	}
	h, err := Resolve(id, export)
	if err != nil {
		return nil, err
	}
	l.cache.Set(id, h)
	return h, nil
}

func (l *Loader) lookup(ctx context.Context, id string) (any, error) {
	l.mu.RLock()
	export, ok := l.registry[id]
	l.mu.RUnlock()
	if ok {
		return export, nil
	}

	if l.source != nil && l.compiler != nil {
		src, err := l.source.Fetch(ctx, id)
		if err != nil {
			return nil, errors.New("E301").WithDetail(id).Wrap(err)
		}
		export, err := l.compiler.Compile(id, src)
		if err != nil {
			return nil, errors.New("E303").WithDetail(id).Wrap(err)
		}
		return export, nil
	}

	return nil, errors.New("E301").WithDetail(id)
}
