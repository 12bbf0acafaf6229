// Package render composes a page with its layout chain and paints the
// result into a live container.
//
// The renderer owns no policy about what to paint; it wraps the vdom paint
// primitives, adds the frame waits around them, and turns layout failures
// into warnings instead of navigation failures.
package render

import (
	"context"
	"log/slog"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/layout"
	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/vdom"
)

// FrameWaiter waits one rendering-frame cycle so the paint surface can
// commit. The hosting environment supplies a real one; the default returns
// immediately.
type FrameWaiter func(ctx context.Context)

// Renderer composes trees and paints containers.
type Renderer struct {
	frame  FrameWaiter
	refs   *vdom.RefGen
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFrameWaiter sets the rendering-frame wait hook.
func WithFrameWaiter(f FrameWaiter) Option {
	return func(r *Renderer) { r.frame = f }
}

// NewRenderer creates a renderer.
func NewRenderer(logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		frame:  func(context.Context) {},
		refs:   vdom.NewRefGen(),
		logger: logger.With("component", "renderer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compose invokes the page module and wraps it in its layouts, innermost
// first: layouts[len-1] wraps the page directly, layouts[0] ends up
// outermost.
//
// Each layout receives its own preloaded data spread into its props — minus
// the payload's own "children"/"data" keys, which may not clobber the
// wrapper's inputs — plus "children" (the tree beneath it) and "data" (the
// payload itself). A failing layout is skipped with a warning and the tree
// beneath it used unchanged; layout failure is never fatal to the page.
func (r *Renderer) Compose(pageHandle *module.Handle, layouts []layout.Resolved, props map[string]any) (*vdom.Node, error) {
	tree, err := pageHandle.Invoke(props)
	if err != nil {
		return nil, errors.Newf(errors.CategoryModule, "page module %s failed to render", pageHandle.ID).Wrap(err)
	}
	if tree == nil {
		return nil, errors.Newf(errors.CategoryModule, "page module %s rendered nothing", pageHandle.ID)
	}

	for i := len(layouts) - 1; i >= 0; i-- {
		entry := layouts[i]
		wrapped, err := entry.Handle.Invoke(layoutProps(entry.Data, tree))
		if err != nil || wrapped == nil {
			r.logger.Warn("layout render failed, skipping",
				"layout", entry.Handle.ID, "error", err, "code", "E401")
			continue
		}
		tree = wrapped
	}
	return tree, nil
}

func layoutProps(data map[string]any, children *vdom.Node) map[string]any {
	props := make(map[string]any, len(data)+2)
	for k, v := range data {
		if k == "children" || k == "data" {
			continue
		}
		props[k] = v
	}
	props["children"] = children
	props["data"] = data
	return props
}

// Paint draws the tree into the container and reports whether the container
// ended up with content — the sole success signal. A reconciled paint that
// fails to adopt the existing markup falls back to a fresh paint, whose own
// result decides.
//
// One rendering-frame cycle is waited before and after the paint so the
// surface can commit.
func (r *Renderer) Paint(ctx context.Context, c *vdom.Container, tree *vdom.Node, mode page.RenderMode) bool {
	vdom.AssignRefs(tree, r.refs)

	r.frame(ctx)
	switch mode {
	case page.ModeReconciled:
		if err := c.Hydrate(tree); err != nil {
			r.logger.Warn("reconciled paint failed, falling back to fresh", "error", err)
			c.Replace(tree)
		}
	default:
		c.Replace(tree)
	}
	r.frame(ctx)

	return c.HasContent()
}

// Update reconciles an already-painted container from a previous tree to a
// new one with minimal mutation. Used by the development hot-swap path.
func (r *Renderer) Update(c *vdom.Container, prev, next *vdom.Node) error {
	vdom.CopyRefs(prev, next)
	vdom.AssignRefs(next, r.refs)
	return c.Apply(vdom.Diff(prev, next))
}
