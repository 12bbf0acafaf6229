package vdom

import (
	"fmt"
	"strings"
)

// Element is a live, mounted node. The zero framework assumption: whatever
// real surface eventually displays these (a DOM bridge, a terminal, a test),
// this model is the engine's source of truth for what is on screen.
type Element struct {
	Kind  Kind
	Tag   string
	Attrs map[string]string
	Text  string // for KindText and KindRaw
	Kids  []*Element
	Ref   string
}

// HasContent reports whether the element has at least one child element or
// non-empty text beneath it.
func (e *Element) HasContent() bool {
	if e == nil {
		return false
	}
	for _, kid := range e.Kids {
		switch kid.Kind {
		case KindElement:
			return true
		case KindText, KindRaw:
			if strings.TrimSpace(kid.Text) != "" {
				return true
			}
		}
		if kid.HasContent() {
			return true
		}
	}
	return false
}

// Materialize builds live elements from a node tree. Fragments are flattened
// into their children, so one node may yield several elements.
func Materialize(n *Node) []*Element {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindText:
		return []*Element{{Kind: KindText, Text: n.Text, Ref: n.Ref}}
	case KindRaw:
		return []*Element{{Kind: KindRaw, Text: n.Text, Ref: n.Ref}}
	case KindFragment:
		var out []*Element
		for _, kid := range n.Kids {
			out = append(out, Materialize(kid)...)
		}
		return out
	case KindElement:
		e := &Element{Kind: KindElement, Tag: n.Tag, Ref: n.Ref}
		for key, val := range n.Attrs {
			if isEventAttr(key) || key == "key" || val == nil {
				continue
			}
			if e.Attrs == nil {
				e.Attrs = make(map[string]string)
			}
			e.Attrs[key] = AttrString(val)
		}
		for _, kid := range n.Kids {
			e.Kids = append(e.Kids, Materialize(kid)...)
		}
		return []*Element{e}
	default:
		return nil
	}
}

// Container is the paint target for one page: a mount-point element whose
// children are the page's content.
type Container struct {
	root     *Element
	handlers map[string]any // "<ref>_<event>" -> handler
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		root:     &Element{Kind: KindElement, Tag: "main"},
		handlers: make(map[string]any),
	}
}

// NewContainerWith creates a container already holding server-rendered
// content, the situation a reconciled paint starts from.
func NewContainerWith(kids ...*Element) *Container {
	c := NewContainer()
	c.root.Kids = kids
	return c
}

// Root returns the mount-point element.
func (c *Container) Root() *Element {
	return c.root
}

// HasContent reports whether the container holds at least one child element
// or non-empty text. This is the engine's sole paint success signal.
func (c *Container) HasContent() bool {
	return c.root.HasContent()
}

// Handlers returns the event handlers wired by the last paint, keyed by
// "<ref>_<event>".
func (c *Container) Handlers() map[string]any {
	return c.handlers
}

// Replace performs a fresh paint: the container's content is rebuilt from
// the tree outright.
func (c *Container) Replace(tree *Node) {
	c.root.Kids = Materialize(tree)
	c.handlers = make(map[string]any)
	c.collectHandlers(tree)
}

// Hydrate performs a reconciled paint: existing content is adopted in place.
// The live structure is assumed to match the tree; any divergence is an
// error, and the caller falls back to a fresh paint.
func (c *Container) Hydrate(tree *Node) error {
	kids := Materialize(tree) // reference shape; live nodes are kept
	if err := adopt(c.root.Kids, kids); err != nil {
		return err
	}
	c.handlers = make(map[string]any)
	c.collectHandlers(tree)
	return nil
}

// adopt walks live children against freshly materialized ones, carrying refs
// and attributes onto the live nodes without rebuilding them.
func adopt(live, next []*Element) error {
	if len(live) != len(next) {
		return fmt.Errorf("vdom: hydrate mismatch: %d live children, %d rendered", len(live), len(next))
	}
	for i := range next {
		l, n := live[i], next[i]
		if l.Kind != n.Kind {
			return fmt.Errorf("vdom: hydrate mismatch at child %d: live %s, rendered %s", i, l.Kind, n.Kind)
		}
		if l.Kind == KindElement && l.Tag != n.Tag {
			return fmt.Errorf("vdom: hydrate mismatch at child %d: live <%s>, rendered <%s>", i, l.Tag, n.Tag)
		}
		l.Ref = n.Ref
		l.Attrs = n.Attrs
		if l.Kind == KindText || l.Kind == KindRaw {
			l.Text = n.Text
			continue
		}
		if err := adopt(l.Kids, n.Kids); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) collectHandlers(n *Node) {
	if n == nil {
		return
	}
	if n.Ref != "" {
		for key, val := range n.Attrs {
			if val != nil && isEventAttr(key) {
				c.handlers[n.Ref+"_"+key] = val
			}
		}
	}
	for _, kid := range n.Kids {
		c.collectHandlers(kid)
	}
}

// Apply mutates the live content with a patch list from Diff.
func (c *Container) Apply(patches []Patch) error {
	for _, p := range patches {
		if err := c.applyOne(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) applyOne(p Patch) error {
	switch p.Op {
	case OpSetText:
		target := c.findByRef(p.Ref)
		if target == nil {
			return fmt.Errorf("vdom: SetText: no element with ref %q", p.Ref)
		}
		if target.Kind == KindText || target.Kind == KindRaw {
			target.Text = p.Value
			return nil
		}
		target.Kids = []*Element{{Kind: KindText, Text: p.Value}}
		return nil
	case OpSetAttr:
		target := c.findByRef(p.Ref)
		if target == nil {
			return fmt.Errorf("vdom: SetAttr: no element with ref %q", p.Ref)
		}
		if target.Attrs == nil {
			target.Attrs = make(map[string]string)
		}
		target.Attrs[p.Key] = p.Value
		return nil
	case OpRemoveAttr:
		if target := c.findByRef(p.Ref); target != nil {
			delete(target.Attrs, p.Key)
		}
		return nil
	case OpInsert:
		parent := c.parentTarget(p.ParentRef)
		if parent == nil {
			return fmt.Errorf("vdom: Insert: no parent with ref %q", p.ParentRef)
		}
		parent.Kids = spliceIn(parent.Kids, p.Index, Materialize(p.Node))
		return nil
	case OpRemove:
		c.removeByRef(p.Ref)
		return nil
	case OpMove:
		target := c.findByRef(p.Ref)
		if target == nil {
			return fmt.Errorf("vdom: Move: no element with ref %q", p.Ref)
		}
		c.removeByRef(p.Ref)
		parent := c.parentTarget(p.ParentRef)
		if parent == nil {
			return fmt.Errorf("vdom: Move: no parent with ref %q", p.ParentRef)
		}
		parent.Kids = spliceIn(parent.Kids, p.Index, []*Element{target})
		return nil
	case OpReplace:
		parent, idx := findParent(c.root, p.Ref)
		if parent == nil {
			return fmt.Errorf("vdom: Replace: no element with ref %q", p.Ref)
		}
		kids := append([]*Element{}, parent.Kids[:idx]...)
		kids = append(kids, Materialize(p.Node)...)
		kids = append(kids, parent.Kids[idx+1:]...)
		parent.Kids = kids
		return nil
	default:
		return fmt.Errorf("vdom: unknown patch op %d", p.Op)
	}
}

func (c *Container) parentTarget(ref string) *Element {
	if ref == "" {
		return c.root
	}
	return c.findByRef(ref)
}

func (c *Container) findByRef(ref string) *Element {
	return findByRef(c.root, ref)
}

func findByRef(e *Element, ref string) *Element {
	if e == nil || ref == "" {
		return nil
	}
	if e.Ref == ref {
		return e
	}
	for _, kid := range e.Kids {
		if found := findByRef(kid, ref); found != nil {
			return found
		}
	}
	return nil
}

func (c *Container) removeByRef(ref string) {
	parent, idx := findParent(c.root, ref)
	if parent == nil {
		return
	}
	parent.Kids = append(parent.Kids[:idx], parent.Kids[idx+1:]...)
}

// findParent locates the parent of the element with the given ref and the
// element's index among its kids.
func findParent(e *Element, ref string) (*Element, int) {
	if e == nil || ref == "" {
		return nil, -1
	}
	for i, kid := range e.Kids {
		if kid.Ref == ref {
			return e, i
		}
		if p, idx := findParent(kid, ref); p != nil {
			return p, idx
		}
	}
	return nil, -1
}

func spliceIn(kids []*Element, index int, add []*Element) []*Element {
	if index < 0 || index > len(kids) {
		index = len(kids)
	}
	out := append([]*Element{}, kids[:index]...)
	out = append(out, add...)
	out = append(out, kids[index:]...)
	return out
}
