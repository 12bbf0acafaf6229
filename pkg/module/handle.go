// Package module loads, caches, and invokes page and layout component
// modules.
//
// A module's export is probed exactly once, at load time, and resolved into
// a tagged invocable variant: either a direct render function or a component
// factory that goes through the element-construction adapter. Rendering
// switches on the tag instead of re-probing the export on every paint.
package module

import (
	"fmt"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/vdom"
)

// Kind tags how a loaded module is invoked.
type Kind uint8

const (
	// KindInvalid marks a handle whose export is not invocable. Such
	// handles are purged from the cache and re-fetched once.
	KindInvalid Kind = iota

	// KindDirect modules expose a render function called directly.
	KindDirect

	// KindAdapter modules expose a component factory invoked through the
	// element-construction convention.
	KindAdapter
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindAdapter:
		return "adapter"
	default:
		return "invalid"
	}
}

// RenderFunc is the direct calling convention: props in, tree out.
type RenderFunc func(props map[string]any) (*vdom.Node, error)

// Factory is the adapter calling convention: props in, component out; the
// component's Render produces the tree.
type Factory func(props map[string]any) vdom.Component

// Definition is the full shape a module export may take, carrying render
// metadata next to the invocable itself.
type Definition struct {
	// Render is the invocable: any form accepted by Resolve.
	Render any

	// Mode is the module's own declared render mode; overrides the
	// descriptor's when set.
	Mode page.RenderMode

	// StopInheriting, on a layout module, halts layout-chain traversal at
	// this layout even when chain entries remain.
	StopInheriting bool
}

// Handle is a loaded, cached module.
type Handle struct {
	ID             string
	Kind           Kind
	Mode           page.RenderMode
	StopInheriting bool

	fn      RenderFunc
	factory Factory
}

// Invocable reports whether the handle can actually be invoked. A cached
// handle failing this check is treated as a miss after a purge.
func (h *Handle) Invocable() bool {
	if h == nil {
		return false
	}
	switch h.Kind {
	case KindDirect:
		return h.fn != nil
	case KindAdapter:
		return h.factory != nil
	default:
		return false
	}
}

// Invoke renders the module with the given props. Panics inside component
// code are recovered and returned as errors so a single bad component cannot
// take down the navigation.
func (h *Handle) Invoke(props map[string]any) (tree *vdom.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = fmt.Errorf("module %s panicked: %v", h.ID, r)
		}
	}()

	switch h.Kind {
	case KindDirect:
		return h.fn(props)
	case KindAdapter:
		comp := h.factory(props)
		if comp == nil {
			return nil, fmt.Errorf("module %s factory returned no component", h.ID)
		}
		return comp.Render(), nil
	default:
		return nil, errors.New("E302").WithDetail(h.ID)
	}
}

// Resolve probes an export once and builds a tagged handle from it.
func Resolve(id string, export any) (*Handle, error) {
	h := &Handle{ID: id}

	if def, ok := export.(*Definition); ok && def != nil {
		export = def.Render
		h.Mode = def.Mode
		h.StopInheriting = def.StopInheriting
	} else if def, ok := export.(Definition); ok {
		export = def.Render
		h.Mode = def.Mode
		h.StopInheriting = def.StopInheriting
	}

	switch v := export.(type) {
	case RenderFunc:
		h.Kind, h.fn = KindDirect, v
	case func(map[string]any) (*vdom.Node, error):
		h.Kind, h.fn = KindDirect, v
	case func(map[string]any) *vdom.Node:
		h.Kind, h.fn = KindDirect, func(props map[string]any) (*vdom.Node, error) {
			return v(props), nil
		}
	case func() *vdom.Node:
		h.Kind, h.fn = KindDirect, func(map[string]any) (*vdom.Node, error) {
			return v(), nil
		}
	case Factory:
		h.Kind, h.factory = KindAdapter, v
	case func(map[string]any) vdom.Component:
		h.Kind, h.factory = KindAdapter, v
	case vdom.Component:
		h.Kind, h.factory = KindAdapter, func(map[string]any) vdom.Component {
			return v
		}
	default:
		return nil, errors.New("E302").WithDetail(fmt.Sprintf("module %s export is %T", id, export))
	}

	return h, nil
}
