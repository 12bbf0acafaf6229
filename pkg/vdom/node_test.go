package vdom

import "testing"

func TestElBuilder(t *testing.T) {
	n := El("div",
		Attr{Key: "class", Value: "page"},
		"hello",
		El("span", "world"),
	)

	if n.Kind != KindElement || n.Tag != "div" {
		t.Fatalf("unexpected node: %+v", n)
	}
	if n.Attrs["class"] != "page" {
		t.Errorf("class = %v", n.Attrs["class"])
	}
	if len(n.Kids) != 2 {
		t.Fatalf("kids = %d, want 2", len(n.Kids))
	}
	if n.Kids[0].Kind != KindText || n.Kids[0].Text != "hello" {
		t.Errorf("first kid = %+v", n.Kids[0])
	}
	if n.Kids[1].Tag != "span" {
		t.Errorf("second kid = %+v", n.Kids[1])
	}
}

func TestElKeyAttr(t *testing.T) {
	n := El("li", Attr{Key: "key", Value: "row-3"})
	if n.Key != "row-3" {
		t.Errorf("Key = %q, want row-3", n.Key)
	}
}

func TestElComponentChild(t *testing.T) {
	comp := Func(func() *Node { return El("p", "inner") })
	n := El("div", comp)
	if len(n.Kids) != 1 || n.Kids[0].Tag != "p" {
		t.Fatalf("component child not rendered: %+v", n.Kids)
	}
}

func TestIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"no handlers", El("div", Attr{Key: "class", Value: "x"}), false},
		{"onclick", El("button", Attr{Key: "onclick", Value: func() {}}), true},
		{"mixed case", El("button", Attr{Key: "onClick", Value: func() {}}), true},
		{"text node", Text("x"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsInteractive(); got != tt.want {
				t.Errorf("IsInteractive = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignRefs(t *testing.T) {
	tree := El("div", El("span"), Frag(El("a")))
	gen := NewRefGen()
	AssignRefs(tree, gen)

	if tree.Ref == "" || tree.Kids[0].Ref == "" {
		t.Error("elements should get refs")
	}
	if tree.Kids[1].Ref != "" {
		t.Error("fragments should not get refs")
	}
	if tree.Kids[1].Kids[0].Ref == "" {
		t.Error("elements inside fragments should get refs")
	}
}

func TestCopyRefs(t *testing.T) {
	prev := El("div", El("span"))
	gen := NewRefGen()
	AssignRefs(prev, gen)

	next := El("div", El("span"))
	if !CopyRefs(prev, next) {
		t.Fatal("CopyRefs should succeed on matching shapes")
	}
	if next.Ref != prev.Ref || next.Kids[0].Ref != prev.Kids[0].Ref {
		t.Error("refs not carried over")
	}

	diverged := El("div", El("a"), El("b"))
	if CopyRefs(prev, diverged) {
		t.Error("CopyRefs should report divergence")
	}
}
