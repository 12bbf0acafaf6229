package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Op is the type of patch operation.
type Op uint8

const (
	OpSetText    Op = iota + 1 // update text content
	OpSetAttr                  // set/update attribute
	OpRemoveAttr               // remove attribute
	OpInsert                   // insert new node under a parent
	OpRemove                   // remove node
	OpMove                     // move node to a new position
	OpReplace                  // replace node entirely
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpMove:
		return "Move"
	case OpReplace:
		return "Replace"
	default:
		return "Unknown"
	}
}

// Patch is a single mutation to apply to a live container.
type Patch struct {
	Op        Op
	Ref       string // target element ref
	ParentRef string // parent ref for Insert/Move
	Index     int    // position for Insert/Move
	Key       string // attribute key for SetAttr/RemoveAttr
	Value     string // new value for SetText/SetAttr
	Node      *Node  // subtree for Insert/Replace
}

// Diff compares two trees and returns the patches needed to transform prev
// into next. Refs are carried from prev onto next as part of diffing.
func Diff(prev, next *Node) []Patch {
	var patches []Patch
	diffNodes(prev, next, "", &patches)
	return patches
}

func diffNodes(prev, next *Node, parentRef string, patches *[]Patch) {
	if prev == nil && next == nil {
		return
	}
	if prev == nil {
		// Additions are emitted by the parent as inserts.
		return
	}
	if next == nil {
		*patches = append(*patches, Patch{Op: OpRemove, Ref: prev.Ref})
		return
	}
	if prev.Kind != next.Kind {
		*patches = append(*patches, Patch{Op: OpReplace, Ref: prev.Ref, ParentRef: parentRef, Node: next})
		return
	}

	switch prev.Kind {
	case KindText, KindRaw:
		next.Ref = prev.Ref
		if prev.Text != next.Text {
			target := prev.Ref
			if target == "" {
				target = parentRef
			}
			if target != "" {
				*patches = append(*patches, Patch{Op: OpSetText, Ref: target, Value: next.Text})
			}
		}
	case KindElement:
		if prev.Tag != next.Tag {
			*patches = append(*patches, Patch{Op: OpReplace, Ref: prev.Ref, ParentRef: parentRef, Node: next})
			return
		}
		next.Ref = prev.Ref
		diffAttrs(prev, next, patches)
		diffKids(prev, next, prev.Ref, patches)
	case KindFragment:
		next.Ref = prev.Ref
		diffKids(prev, next, parentRef, patches)
	}
}

func diffAttrs(prev, next *Node, patches *[]Patch) {
	for key, prevVal := range prev.Attrs {
		if isEventAttr(key) || key == "key" {
			continue
		}
		nextVal, exists := next.Attrs[key]
		if !exists {
			*patches = append(*patches, Patch{Op: OpRemoveAttr, Ref: prev.Ref, Key: key})
		} else if !attrEqual(prevVal, nextVal) {
			*patches = append(*patches, Patch{Op: OpSetAttr, Ref: prev.Ref, Key: key, Value: AttrString(nextVal)})
		}
	}
	for key, nextVal := range next.Attrs {
		if isEventAttr(key) || key == "key" {
			continue
		}
		if _, exists := prev.Attrs[key]; !exists {
			*patches = append(*patches, Patch{Op: OpSetAttr, Ref: prev.Ref, Key: key, Value: AttrString(nextVal)})
		}
	}
}

func diffKids(prev, next *Node, parentRef string, patches *[]Patch) {
	if hasKeys(prev.Kids) || hasKeys(next.Kids) {
		diffKeyedKids(prev, parentRef, patches, next)
		return
	}

	maxLen := len(prev.Kids)
	if len(next.Kids) > maxLen {
		maxLen = len(next.Kids)
	}
	for i := 0; i < maxLen; i++ {
		var prevKid, nextKid *Node
		if i < len(prev.Kids) {
			prevKid = prev.Kids[i]
		}
		if i < len(next.Kids) {
			nextKid = next.Kids[i]
		}
		switch {
		case prevKid == nil && nextKid != nil:
			*patches = append(*patches, Patch{Op: OpInsert, ParentRef: parentRef, Index: i, Node: nextKid})
		case prevKid != nil && nextKid == nil:
			*patches = append(*patches, Patch{Op: OpRemove, Ref: prevKid.Ref})
		default:
			diffNodes(prevKid, nextKid, parentRef, patches)
		}
	}
}

func diffKeyedKids(prev *Node, parentRef string, patches *[]Patch, next *Node) {
	prevByKey := make(map[string]int)
	for i, kid := range prev.Kids {
		if k := kidKey(kid); k != "" {
			prevByKey[k] = i
		}
	}

	matched := make(map[int]bool)
	for nextIdx, nextKid := range next.Kids {
		key := kidKey(nextKid)
		if key == "" {
			*patches = append(*patches, Patch{Op: OpInsert, ParentRef: parentRef, Index: nextIdx, Node: nextKid})
			continue
		}
		prevIdx, exists := prevByKey[key]
		if !exists {
			*patches = append(*patches, Patch{Op: OpInsert, ParentRef: parentRef, Index: nextIdx, Node: nextKid})
			continue
		}
		matched[prevIdx] = true
		prevKid := prev.Kids[prevIdx]
		if prevIdx != nextIdx {
			*patches = append(*patches, Patch{Op: OpMove, Ref: prevKid.Ref, ParentRef: parentRef, Index: nextIdx})
		}
		diffNodes(prevKid, nextKid, parentRef, patches)
	}

	for i, prevKid := range prev.Kids {
		if !matched[i] && kidKey(prevKid) != "" {
			*patches = append(*patches, Patch{Op: OpRemove, Ref: prevKid.Ref})
		}
	}
}

func kidKey(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Key != "" {
		return n.Key
	}
	if n.Attrs == nil {
		return ""
	}
	if key, ok := n.Attrs["key"].(string); ok {
		return key
	}
	return ""
}

func hasKeys(kids []*Node) bool {
	for _, kid := range kids {
		if kidKey(kid) != "" {
			return true
		}
	}
	return false
}

func attrEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// AttrString converts an attribute value to its string form.
func AttrString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
