package vdom

import "testing"

func assigned(n *Node) *Node {
	AssignRefs(n, NewRefGen())
	return n
}

func TestDiffIdenticalTrees(t *testing.T) {
	prev := assigned(El("div", Attr{Key: "class", Value: "x"}, "hi"))
	next := El("div", Attr{Key: "class", Value: "x"}, "hi")

	if patches := Diff(prev, next); len(patches) != 0 {
		t.Errorf("expected no patches, got %v", patches)
	}
	if next.Ref != prev.Ref {
		t.Error("diff should carry refs onto next tree")
	}
}

func TestDiffTextChange(t *testing.T) {
	prev := assigned(El("p", "before"))
	next := El("p", "after")

	patches := Diff(prev, next)
	if len(patches) != 1 {
		t.Fatalf("patches = %v", patches)
	}
	p := patches[0]
	if p.Op != OpSetText || p.Ref != prev.Ref || p.Value != "after" {
		t.Errorf("unexpected patch %+v", p)
	}
}

func TestDiffAttrs(t *testing.T) {
	prev := assigned(El("a", Attr{Key: "href", Value: "/old"}, Attr{Key: "rel", Value: "nofollow"}))
	next := El("a", Attr{Key: "href", Value: "/new"}, Attr{Key: "title", Value: "t"})

	patches := Diff(prev, next)
	ops := map[Op]int{}
	for _, p := range patches {
		ops[p.Op]++
	}
	if ops[OpSetAttr] != 2 || ops[OpRemoveAttr] != 1 {
		t.Errorf("ops = %v, want 2 SetAttr + 1 RemoveAttr", ops)
	}
}

func TestDiffTagChangeReplaces(t *testing.T) {
	prev := assigned(El("div"))
	next := El("section")

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Op != OpReplace {
		t.Fatalf("patches = %v, want single Replace", patches)
	}
}

func TestDiffChildInsertRemove(t *testing.T) {
	prev := assigned(El("ul", El("li", "a")))
	next := El("ul", El("li", "a"), El("li", "b"))

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Op != OpInsert || patches[0].Index != 1 {
		t.Fatalf("patches = %v, want Insert at 1", patches)
	}

	prev2 := assigned(El("ul", El("li", "a"), El("li", "b")))
	next2 := El("ul", El("li", "a"))
	patches = Diff(prev2, next2)
	if len(patches) != 1 || patches[0].Op != OpRemove {
		t.Fatalf("patches = %v, want single Remove", patches)
	}
}

func TestDiffKeyedReorder(t *testing.T) {
	prev := assigned(El("ul",
		El("li", Attr{Key: "key", Value: "a"}),
		El("li", Attr{Key: "key", Value: "b"}),
	))
	next := El("ul",
		El("li", Attr{Key: "key", Value: "b"}),
		El("li", Attr{Key: "key", Value: "a"}),
	)

	patches := Diff(prev, next)
	moves := 0
	for _, p := range patches {
		if p.Op == OpMove {
			moves++
		}
		if p.Op == OpInsert || p.Op == OpRemove {
			t.Errorf("keyed reorder should not insert/remove: %+v", p)
		}
	}
	if moves == 0 {
		t.Error("expected at least one Move patch")
	}
}

func TestDiffEventAttrsIgnored(t *testing.T) {
	prev := assigned(El("button", Attr{Key: "onclick", Value: func() {}}))
	next := El("button", Attr{Key: "onclick", Value: func() {}})

	if patches := Diff(prev, next); len(patches) != 0 {
		t.Errorf("handler attrs should not produce patches: %v", patches)
	}
}
