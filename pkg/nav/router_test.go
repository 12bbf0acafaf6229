package nav

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/layout"
	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/render"
	"github.com/strada-dev/strada/pkg/routepath"
	"github.com/strada-dev/strada/pkg/vdom"
)

type recHistory struct {
	mu       sync.Mutex
	pushes   []string
	replaces []string
}

func (h *recHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushes = append(h.pushes, path)
}

func (h *recHistory) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replaces = append(h.replaces, path)
}

func (h *recHistory) Location() string { return "" }

func (h *recHistory) pushed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pushes...)
}

type recMeta struct {
	mu    sync.Mutex
	title string
	metas map[string]string
}

func (m *recMeta) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

func (m *recMeta) SetMeta(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metas == nil {
		m.metas = make(map[string]string)
	}
	m.metas[name] = content
}

type recReloader struct {
	mu    sync.Mutex
	paths []string
}

func (r *recReloader) Reload(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recReloader) reloads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// docFor renders a minimal server document embedding the descriptor.
func docFor(t *testing.T, d *page.Descriptor) string {
	t.Helper()
	payload, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	return fmt.Sprintf(`<html><body><div id="app"></div><script type="application/json" id=%q>%s</script></body></html>`,
		page.DataBlockID, payload)
}

type fixture struct {
	router    *Router
	modules   *module.Loader
	pages     *page.Loader
	container *vdom.Container
	history   *recHistory
	meta      *recMeta
	reloader  *recReloader
}

func newFixture(t *testing.T, handler http.HandlerFunc, opts ...RouterOption) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	norm := routepath.NewNormalizer("")
	pages := page.NewLoader(srv.Client(), srv.URL, norm, page.NewCache(), nil)
	modules := module.NewLoader(module.NewCache(), nil)
	layouts := layout.NewResolver(modules, nil)
	renderer := render.NewRenderer(nil)
	container := vdom.NewContainer()

	f := &fixture{
		modules:   modules,
		pages:     pages,
		container: container,
		history:   &recHistory{},
		meta:      &recMeta{},
		reloader:  &recReloader{},
	}
	opts = append([]RouterOption{WithEnv(Env{
		History:  f.history,
		Meta:     f.meta,
		Reloader: f.reloader,
	})}, opts...)
	f.router = NewRouter(pages, modules, layouts, renderer, container, &page.NavigationContext{}, nil, opts...)
	return f
}

// textOf flattens an element's text content.
func textOf(e *vdom.Element) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*vdom.Element)
	walk = func(el *vdom.Element) {
		b.WriteString(el.Text)
		for _, kid := range el.Kids {
			walk(kid)
		}
	}
	walk(e)
	return b.String()
}

func serveDescriptor(t *testing.T, d *page.Descriptor) http.HandlerFunc {
	doc := docFor(t, d)
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}
}

func TestNavigateCommits(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{
		RouteID: "home",
		Meta:    &page.Meta{Title: "Home", Description: "the home page"},
	}))
	f.modules.Register("home", func(map[string]any) *vdom.Node {
		return vdom.El("article", "welcome")
	})

	var gotPath string
	var gotDesc *page.Descriptor
	f.router.Subscribe(func(path string, d *page.Descriptor) {
		gotPath, gotDesc = path, d
	})

	if err := f.router.Navigate(context.Background(), "/home?tab=1#frag", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if got := f.router.State(); got != StateCommitted {
		t.Errorf("state = %v, want committed", got)
	}
	if !f.container.HasContent() {
		t.Error("container has no content after commit")
	}
	if got := textOf(f.container.Root()); !strings.Contains(got, "welcome") {
		t.Errorf("painted text = %q, want to contain welcome", got)
	}
	// The address bar keeps the query and fragment; caching and listeners
	// see the normalized key.
	if got := f.history.pushed(); len(got) != 1 || got[0] != "/home?tab=1#frag" {
		t.Errorf("history pushes = %v, want [/home?tab=1#frag]", got)
	}
	if gotPath != "/home" || gotDesc == nil || gotDesc.RouteID != "home" {
		t.Errorf("listener got (%q, %+v)", gotPath, gotDesc)
	}
	if f.meta.title != "Home" {
		t.Errorf("title = %q, want Home", f.meta.title)
	}
	if f.meta.metas["description"] != "the home page" {
		t.Errorf("description meta = %q", f.meta.metas["description"])
	}
	if f.router.CurrentPath() != "/home" {
		t.Errorf("CurrentPath = %q, want /home", f.router.CurrentPath())
	}
}

func TestNavigateReplaceUsesReplaceEntry(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "home"}))
	f.modules.Register("home", func(map[string]any) *vdom.Node {
		return vdom.El("div", "x")
	})

	if err := f.router.Navigate(context.Background(), "/home", true); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(f.history.pushes) != 0 {
		t.Errorf("pushes = %v, want none", f.history.pushes)
	}
	if len(f.history.replaces) != 1 || f.history.replaces[0] != "/home" {
		t.Errorf("replaces = %v, want [/home]", f.history.replaces)
	}
}

func TestNavigateMissingModuleEscalates(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "ghost"}))

	err := f.router.Navigate(context.Background(), "/ghost", false)
	if err == nil {
		t.Fatal("Navigate succeeded with unregistered module")
	}
	if code := errors.CodeOf(err); code != "E301" {
		t.Errorf("code = %q, want E301", code)
	}
	if got := f.router.State(); got != StateFailed {
		t.Errorf("state = %v, want failed", got)
	}
	if got := f.reloader.reloads(); len(got) != 1 || got[0] != "/ghost" {
		t.Errorf("reloads = %v, want [/ghost]", got)
	}
	if len(f.history.pushed()) != 0 {
		t.Errorf("history pushes = %v, want none on failure", f.history.pushed())
	}
}

func TestNavigateServerOnlyHandsOff(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "admin", Mode: page.ModeServerOnly}))
	f.modules.Register("admin", func(map[string]any) *vdom.Node {
		return vdom.El("div", "should not paint")
	})

	if err := f.router.Navigate(context.Background(), "/admin", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := f.reloader.reloads(); len(got) != 1 || got[0] != "/admin" {
		t.Errorf("reloads = %v, want [/admin]", got)
	}
	if f.container.HasContent() {
		t.Error("container painted for a server-only route")
	}
	if len(f.history.pushed()) != 0 {
		t.Errorf("history pushes = %v, want none", f.history.pushed())
	}
}

func TestModuleModeOverridesDescriptor(t *testing.T) {
	// The descriptor says server-only, the module itself declares fresh.
	// The module's declaration wins and the transition stays in-page.
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "home", Mode: page.ModeServerOnly}))
	f.modules.Register("home", module.Definition{
		Render: func(map[string]any) *vdom.Node { return vdom.El("div", "in-page") },
		Mode:   page.ModeFresh,
	})

	if err := f.router.Navigate(context.Background(), "/home", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(f.reloader.reloads()) != 0 {
		t.Errorf("reloads = %v, want none", f.reloader.reloads())
	}
	if !f.container.HasContent() {
		t.Error("container has no content")
	}
}

func TestEmptyPaintRetriedExactlyOnce(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "empty"}))

	var invocations atomic.Int32
	f.modules.Register("empty", func(map[string]any) *vdom.Node {
		invocations.Add(1)
		return vdom.Frag() // materializes to nothing
	})

	err := f.router.Navigate(context.Background(), "/empty", false)
	if err == nil {
		t.Fatal("Navigate succeeded with an empty paint")
	}
	if code := errors.CodeOf(err); code != "E501" {
		t.Errorf("code = %q, want E501", code)
	}
	if got := invocations.Load(); got != 2 {
		t.Errorf("module invoked %d times, want exactly 2 (initial + one retry)", got)
	}
	if got := f.reloader.reloads(); len(got) != 1 || got[0] != "/empty" {
		t.Errorf("reloads = %v, want [/empty]", got)
	}
}

func TestPurgedModuleReresolvedOnNavigate(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "home"}))
	f.modules.Register("home", func(map[string]any) *vdom.Node {
		return vdom.El("div", "ok")
	})
	// Poison the cache with a handle that cannot be invoked.
	f.modules.Cache().Set("home", &module.Handle{ID: "home"})

	if err := f.router.Navigate(context.Background(), "/home", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !f.container.HasContent() {
		t.Error("container has no content after purge and re-resolve")
	}
	if h := f.modules.Cache().Get("home"); !h.Invocable() {
		t.Error("cache still holds a non-invocable handle")
	}
}

func TestStaleNavigationDiscarded(t *testing.T) {
	slowEntered := make(chan struct{})
	release := make(chan struct{})
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			close(slowEntered)
			<-release
			fmt.Fprint(w, docFor(t, &page.Descriptor{RouteID: "slow"}))
			return
		}
		fmt.Fprint(w, docFor(t, &page.Descriptor{RouteID: "fast"}))
	}
	f := newFixture(t, handler)
	f.modules.Register("slow", func(map[string]any) *vdom.Node { return vdom.El("div", "slow") })
	f.modules.Register("fast", func(map[string]any) *vdom.Node { return vdom.El("div", "fast") })

	done := make(chan error, 1)
	go func() { done <- f.router.Navigate(context.Background(), "/slow", false) }()
	<-slowEntered

	if err := f.router.Navigate(context.Background(), "/fast", false); err != nil {
		t.Fatalf("Navigate(/fast): %v", err)
	}
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("superseded navigation returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("superseded navigation never returned")
	}

	if got := f.history.pushed(); len(got) != 1 || got[0] != "/fast" {
		t.Errorf("history pushes = %v, want only [/fast]", got)
	}
	if f.router.CurrentPath() != "/fast" {
		t.Errorf("CurrentPath = %q, want /fast", f.router.CurrentPath())
	}
	if got := textOf(f.container.Root()); !strings.Contains(got, "fast") {
		t.Errorf("painted text = %q, want the newer page", got)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "home"}))
	f.modules.Register("home", func(map[string]any) *vdom.Node { return vdom.El("div", "x") })

	var calls int
	unsub := f.router.Subscribe(func(string, *page.Descriptor) { calls++ })

	if err := f.router.Navigate(context.Background(), "/home", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	unsub()
	f.pages.Cache().Clear()
	// The handler serves the same descriptor for any path, so this commits
	// too; the removed listener must not fire for it.
	if err := f.router.Navigate(context.Background(), "/other", false); err != nil {
		t.Fatalf("Navigate(/other): %v", err)
	}
	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestRefreshUpdatesInPlace(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "home"}))
	f.modules.Register("home", func(map[string]any) *vdom.Node {
		return vdom.El("div", "version one")
	})

	if err := f.router.Navigate(context.Background(), "/home", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	// Simulate a hot swap: replacement source registered, stale handle purged.
	f.modules.Register("home", func(map[string]any) *vdom.Node {
		return vdom.El("div", "version two")
	})
	f.modules.Cache().Delete("home")

	if err := f.router.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := textOf(f.container.Root()); !strings.Contains(got, "version two") {
		t.Errorf("painted text = %q, want the swapped module's output", got)
	}
	if got := f.history.pushed(); len(got) != 1 {
		t.Errorf("history pushes = %v, refresh must not add entries", got)
	}
}

func TestNavigatePropsCarryRouteData(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{
		RouteID:   "user",
		Props:     map[string]any{"name": "ada"},
		Params:    map[string]string{"id": "7"},
		Query:     map[string]string{"tab": "posts"},
		RoutePath: "/users/:id",
	}), WithSharedProps(map[string]any{"theme": "dark", "name": "shadowed"}))

	var got map[string]any
	f.modules.Register("user", func(props map[string]any) *vdom.Node {
		got = props
		return vdom.El("div", "u")
	})

	if err := f.router.Navigate(context.Background(), "/users/7", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if got["name"] != "ada" {
		t.Errorf("props[name] = %v, descriptor props must win over shared", got["name"])
	}
	if got["theme"] != "dark" {
		t.Errorf("props[theme] = %v, want shared prop", got["theme"])
	}
	params, _ := got["params"].(map[string]string)
	if params["id"] != "7" {
		t.Errorf("props[params] = %v", got["params"])
	}
	if got["routePath"] != "/users/:id" {
		t.Errorf("props[routePath] = %v", got["routePath"])
	}
}

func TestNavigateSynthesizesRoutePath(t *testing.T) {
	f := newFixture(t, serveDescriptor(t, &page.Descriptor{RouteID: "plain"}))

	var got map[string]any
	f.modules.Register("plain", func(props map[string]any) *vdom.Node {
		got = props
		return vdom.El("div", "p")
	})

	if err := f.router.Navigate(context.Background(), "/plain", false); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got["routePath"] != "/plain" {
		t.Errorf("props[routePath] = %v, want the navigation target when the descriptor omits it", got["routePath"])
	}
}
