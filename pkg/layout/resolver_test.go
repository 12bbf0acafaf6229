package layout

import (
	"context"
	"testing"

	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/vdom"
)

func layoutFunc(name string) any {
	return func(map[string]any) *vdom.Node { return vdom.El("div", name) }
}

func newTestResolver(opts ...Option) (*Resolver, *module.Loader) {
	loader := module.NewLoader(module.NewCache(), nil)
	return NewResolver(loader, nil, opts...), loader
}

func TestResolveOrdersOutermostFirst(t *testing.T) {
	r, loader := newTestResolver()
	loader.Register("A", layoutFunc("A"))
	loader.Register("B", layoutFunc("B"))
	loader.Register("C", layoutFunc("C"))

	d := &page.Descriptor{
		RouteID: "p",
		Layouts: []string{"A", "B", "C"}, // A most specific
		LayoutData: []map[string]any{
			{"for": "A"}, {"for": "B"}, {"for": "C"},
		},
	}

	got := r.Resolve(context.Background(), d)
	if len(got) != 3 {
		t.Fatalf("resolved %d layouts, want 3", len(got))
	}
	// Index 0 is the outermost wrapper: C, the most generic.
	wantOrder := []string{"C", "B", "A"}
	for i, want := range wantOrder {
		if got[i].Handle.ID != want {
			t.Errorf("layout[%d] = %s, want %s", i, got[i].Handle.ID, want)
		}
		if got[i].Data["for"] != want {
			t.Errorf("layout[%d] data = %v, want its own payload", i, got[i].Data)
		}
	}
}

func TestResolveOptOut(t *testing.T) {
	r, loader := newTestResolver()
	loader.Register("A", layoutFunc("A"))

	d := &page.Descriptor{RouteID: "p", Layouts: []string{"A"}, DisableLayouts: true}
	if got := r.Resolve(context.Background(), d); len(got) != 0 {
		t.Errorf("opt-out should resolve no layouts, got %v", got)
	}
}

func TestResolveStopInheritingHaltsChain(t *testing.T) {
	r, loader := newTestResolver()
	loader.Register("A", layoutFunc("A"))
	loader.Register("B", module.Definition{
		Render:         layoutFunc("B"),
		StopInheriting: true,
	})
	// C is deliberately unregistered: if the walk reaches it, Resolve would
	// log a skip and the module loader would record the attempt.

	d := &page.Descriptor{RouteID: "p", Layouts: []string{"A", "B", "C"}}
	got := r.Resolve(context.Background(), d)
	if len(got) != 2 {
		t.Fatalf("resolved %d layouts, want 2 (A and B)", len(got))
	}
	if got[0].Handle.ID != "B" || got[1].Handle.ID != "A" {
		t.Errorf("order = [%s %s], want [B A]", got[0].Handle.ID, got[1].Handle.ID)
	}
	if loader.Cache().Get("C") != nil {
		t.Error("C must never be loaded once B opts out")
	}
}

func TestResolveSkipsFailedLayout(t *testing.T) {
	r, loader := newTestResolver()
	loader.Register("A", layoutFunc("A"))
	// "missing" is not registered and has no remote source.
	loader.Register("C", layoutFunc("C"))

	d := &page.Descriptor{RouteID: "p", Layouts: []string{"A", "missing", "C"}}
	got := r.Resolve(context.Background(), d)
	if len(got) != 2 {
		t.Fatalf("resolved %d layouts, want 2", len(got))
	}
	if got[0].Handle.ID != "C" || got[1].Handle.ID != "A" {
		t.Errorf("order = [%s %s], want [C A]", got[0].Handle.ID, got[1].Handle.ID)
	}
}

func TestResolveLegacyFallback(t *testing.T) {
	r, loader := newTestResolver(WithLegacyLayout("layouts/root"))
	loader.Register("layouts/root", layoutFunc("root"))

	d := &page.Descriptor{RouteID: "p"}
	got := r.Resolve(context.Background(), d)
	if len(got) != 1 || got[0].Handle.ID != "layouts/root" {
		t.Fatalf("legacy fallback = %v", got)
	}
	if got[0].Data != nil {
		t.Error("legacy layout has no preloaded data")
	}

	// Without a legacy path, no chain means no layouts.
	r2, _ := newTestResolver()
	if got := r2.Resolve(context.Background(), d); len(got) != 0 {
		t.Errorf("no chain, no legacy: got %v", got)
	}
}
