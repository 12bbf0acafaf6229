package vdom

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <a>, etc.
	KindText                 // plain text node
	KindFragment             // grouping without a wrapper element
	KindRaw                  // raw HTML (dangerous)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Node describes a piece of markup to paint.
type Node struct {
	Kind  Kind           // node type
	Tag   string         // element tag name (e.g. "div")
	Attrs map[string]any // attributes and event handlers
	Kids  []*Node        // child nodes
	Key   string         // reconciliation key
	Text  string         // for KindText and KindRaw
	Ref   string         // stable ref id (assigned during paint)
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// Component is anything that can render to a Node.
type Component interface {
	Render() *Node
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func() *Node
}

// Render implements Component.
func (f *FuncComponent) Render() *Node {
	return f.render()
}

// Func creates a component from a render function.
func Func(render func() *Node) Component {
	return &FuncComponent{render: render}
}

// El builds an element node. Arguments are interpreted by type: Attr sets an
// attribute, string appends a text child, *Node and []*Node append children,
// Component renders and appends, map[string]any merges attributes.
func El(tag string, args ...any) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, arg := range args {
		n.apply(arg)
	}
	return n
}

func (n *Node) apply(arg any) {
	switch v := arg.(type) {
	case nil:
	case Attr:
		if v.Key == "" {
			return
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]any)
		}
		if v.Key == "key" {
			if s, ok := v.Value.(string); ok {
				n.Key = s
			}
		}
		n.Attrs[v.Key] = v.Value
	case map[string]any:
		for k, val := range v {
			n.apply(Attr{Key: k, Value: val})
		}
	case string:
		n.Kids = append(n.Kids, Text(v))
	case *Node:
		if v != nil {
			n.Kids = append(n.Kids, v)
		}
	case []*Node:
		for _, kid := range v {
			if kid != nil {
				n.Kids = append(n.Kids, kid)
			}
		}
	case Component:
		if tree := v.Render(); tree != nil {
			n.Kids = append(n.Kids, tree)
		}
	case []any:
		for _, item := range v {
			n.apply(item)
		}
	}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Frag groups nodes without a wrapper element.
func Frag(kids ...*Node) *Node {
	return &Node{Kind: KindFragment, Kids: kids}
}

// Raw creates a raw HTML node.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// IsInteractive reports whether the node carries event handlers and
// therefore needs a stable ref.
func (n *Node) IsInteractive() bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	for key := range n.Attrs {
		if isEventAttr(key) {
			return true
		}
	}
	return false
}

// isEventAttr reports whether an attribute key names an event handler.
// Case-insensitive: onclick, onClick, ONCLICK all count.
func isEventAttr(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}
