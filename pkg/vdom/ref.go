package vdom

import (
	"fmt"
	"sync"
)

// RefGen generates stable ref ids for elements across paints.
type RefGen struct {
	counter uint32
	mu      sync.Mutex
}

// NewRefGen creates a new RefGen.
func NewRefGen() *RefGen {
	return &RefGen{}
}

// Next returns the next ref id (e.g. "s1", "s2", ...).
func (g *RefGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("s%d", g.counter)
}

// Reset resets the counter to 0.
func (g *RefGen) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}

// AssignRefs walks the tree and assigns refs to element nodes that do not
// already carry one.
func AssignRefs(n *Node, gen *RefGen) {
	if n == nil {
		return
	}
	if n.Kind == KindElement && n.Ref == "" {
		n.Ref = gen.Next()
	}
	for _, kid := range n.Kids {
		AssignRefs(kid, gen)
	}
}

// CopyRefs copies refs from a previous tree onto a structurally matching new
// tree so elements keep their identity between paints. Returns false when
// the shapes diverge; refs copied up to that point are kept.
func CopyRefs(src, dst *Node) bool {
	if src == nil || dst == nil {
		return src == nil && dst == nil
	}
	if src.Kind != dst.Kind || src.Tag != dst.Tag {
		return false
	}
	dst.Ref = src.Ref
	if len(src.Kids) != len(dst.Kids) {
		return false
	}
	for i := range src.Kids {
		if !CopyRefs(src.Kids[i], dst.Kids[i]) {
			return false
		}
	}
	return true
}

// FindByRef finds a node by ref in a tree.
func FindByRef(n *Node, ref string) *Node {
	if n == nil || ref == "" {
		return nil
	}
	if n.Ref == ref {
		return n
	}
	for _, kid := range n.Kids {
		if found := FindByRef(kid, ref); found != nil {
			return found
		}
	}
	return nil
}
