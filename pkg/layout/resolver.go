// Package layout resolves a page descriptor's layout chain into loaded
// wrapper components.
package layout

import (
	"context"
	"log/slog"

	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/page"
)

// Resolved pairs a loaded layout with its own preloaded data from the
// descriptor's parallel array.
type Resolved struct {
	Handle *module.Handle
	Data   map[string]any
}

// Resolver walks a descriptor's layout chain, loading and caching each
// layout module.
type Resolver struct {
	modules    *module.Loader
	logger     *slog.Logger
	legacyPath string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLegacyLayout sets the single layout path used when a descriptor
// declares no explicit chain, for pages produced before chains existed.
func WithLegacyLayout(path string) Option {
	return func(r *Resolver) { r.legacyPath = path }
}

// NewResolver creates a layout resolver.
func NewResolver(modules *module.Loader, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		modules: modules,
		logger:  logger.With("component", "layout-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the page's wrappers ordered outermost first.
//
// The descriptor's chain is ordered most specific to most generic and is
// walked strictly sequentially: a loaded layout declaring stop-inheriting
// halts the walk before later entries are even loaded. A single layout's
// load failure is warned and skipped; it never aborts the rest of the chain.
func (r *Resolver) Resolve(ctx context.Context, d *page.Descriptor) []Resolved {
	if d.DisableLayouts {
		return nil
	}

	chain := d.Layouts
	withData := true
	if len(chain) == 0 {
		if r.legacyPath == "" {
			return nil
		}
		chain = []string{r.legacyPath}
		withData = false
	}

	// Innermost first while walking; reversed below.
	var inner []Resolved
	for i, path := range chain {
		h, err := r.modules.Load(ctx, path)
		if err != nil {
			r.logger.Warn("layout load failed, skipping", "layout", path, "error", err)
			continue
		}
		entry := Resolved{Handle: h}
		if withData {
			entry.Data = d.DataForLayout(i)
		}
		inner = append(inner, entry)
		if h.StopInheriting {
			break
		}
	}

	out := make([]Resolved, len(inner))
	for i, entry := range inner {
		out[len(inner)-1-i] = entry
	}
	return out
}
