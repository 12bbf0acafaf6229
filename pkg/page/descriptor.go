// Package page defines the page descriptor contract between the origin
// server and the navigation engine, and the loader that fetches and caches
// descriptors.
//
// Every server-rendered document embeds exactly one reserved data block
// holding a JSON descriptor. The loader normalizes the requested path into a
// cache key, fetches the document when the cache misses, extracts the block,
// and hands the descriptor to the router.
package page

import (
	"encoding/json"
	"fmt"
)

// RenderMode describes how a page's first client appearance is produced.
type RenderMode int

const (
	// ModeUnset means no mode was declared; the router falls back to the
	// descriptor's mode, then to ModeFresh.
	ModeUnset RenderMode = iota

	// ModeFresh replaces the container's content outright.
	ModeFresh

	// ModeReconciled attaches behavior to markup already present in the
	// container, assumed structurally matching.
	ModeReconciled

	// ModeServerOnly means the page is never painted client-side; the
	// router hands the navigation back to the browser.
	ModeServerOnly
)

// String returns the wire representation of the mode.
func (m RenderMode) String() string {
	switch m {
	case ModeFresh:
		return "fresh"
	case ModeReconciled:
		return "reconciled"
	case ModeServerOnly:
		return "server-only"
	default:
		return ""
	}
}

// ParseRenderMode parses a wire mode string. Empty means unset.
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "":
		return ModeUnset, nil
	case "fresh":
		return ModeFresh, nil
	case "reconciled":
		return ModeReconciled, nil
	case "server-only":
		return ModeServerOnly, nil
	default:
		return ModeUnset, fmt.Errorf("unknown render mode %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (m RenderMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements json.Unmarshaler. Unknown modes are tolerated as
// unset rather than failing the whole descriptor.
func (m *RenderMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, err := ParseRenderMode(s)
	if err != nil {
		*m = ModeUnset
		return nil
	}
	*m = mode
	return nil
}

// Meta contains page metadata for SEO.
type Meta struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Canonical   string   `json:"canonical,omitempty"`
	Robots      string   `json:"robots,omitempty"`
	OGTitle     string   `json:"ogTitle,omitempty"`
	OGDesc      string   `json:"ogDescription,omitempty"`
	OGImage     string   `json:"ogImage,omitempty"`
}

// Descriptor is the page data the server embeds into every document.
type Descriptor struct {
	// RouteID is the identity of the module that renders the page.
	RouteID string `json:"routeId"`

	// Mode is the server-declared render mode; the module's own declared
	// mode takes precedence when present.
	Mode RenderMode `json:"mode,omitempty"`

	// Props are the server-declared page props.
	Props map[string]any `json:"props,omitempty"`

	// Params are the parsed route parameters.
	Params map[string]string `json:"params,omitempty"`

	// Query are the parsed query parameters.
	Query map[string]string `json:"query,omitempty"`

	// RoutePath is the route pattern the page was matched under.
	RoutePath string `json:"routePath,omitempty"`

	// URL is the full document URL the descriptor was rendered for.
	URL string `json:"url,omitempty"`

	// Layouts is the ordered layout chain, most specific first.
	// Composition nests innermost (page) first; index 0 wraps closest to
	// the page.
	Layouts []string `json:"layouts,omitempty"`

	// DisableLayouts opts the page out of the entire layout chain.
	DisableLayouts bool `json:"disableLayouts,omitempty"`

	// LayoutData is preloaded per-layout data, parallel to Layouts.
	LayoutData []map[string]any `json:"layoutData,omitempty"`

	// Meta is the page's SEO metadata.
	Meta *Meta `json:"meta,omitempty"`
}

// Validate checks the descriptor carries an addressable module identity.
func (d *Descriptor) Validate() error {
	if d.RouteID == "" {
		return fmt.Errorf("descriptor has no routeId")
	}
	return nil
}

// DataForLayout returns the preloaded data for the chain entry at index i,
// or nil when the parallel array is shorter.
func (d *Descriptor) DataForLayout(i int) map[string]any {
	if i < 0 || i >= len(d.LayoutData) {
		return nil
	}
	return d.LayoutData[i]
}

// NavigationContext carries the engine's view of the currently active page.
// It is constructed once at bootstrap and threaded through loader and router
// calls instead of being read from ambient globals.
type NavigationContext struct {
	// Path is the normalized path of the active page.
	Path string

	// Descriptor is the active page's descriptor.
	Descriptor *Descriptor
}
