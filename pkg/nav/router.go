package nav

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/layout"
	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/render"
	"github.com/strada-dev/strada/pkg/routepath"
	"github.com/strada-dev/strada/pkg/vdom"
)

// State is the router's position in the navigation lifecycle.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateComposing
	StatePainting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateComposing:
		return "composing"
	case StatePainting:
		return "painting"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Listener is notified after a navigation commits.
type Listener func(path string, d *page.Descriptor)

// Router orchestrates page transitions: it loads the page descriptor,
// resolves the module and layout chain, composes and paints the tree, and
// commits history, metadata and listener side effects. Any failure past the
// interception point escalates to a full document reload rather than leaving
// the user on a broken page.
type Router struct {
	pages     *page.Loader
	modules   *module.Loader
	layouts   *layout.Resolver
	renderer  *render.Renderer
	container *vdom.Container
	nav       *page.NavigationContext
	env       Env
	logger    *slog.Logger

	metrics *Metrics
	tracer  oteltrace.Tracer

	shared map[string]any

	// token orders navigations; a step whose token is no longer current
	// discards its work without side effects.
	token atomic.Uint64
	state atomic.Int32

	mu          sync.Mutex
	currentTree *vdom.Node

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithEnv supplies the hosting environment's history, metadata and reload
// collaborators.
func WithEnv(env Env) RouterOption {
	return func(r *Router) { r.env = env.withDefaults() }
}

// WithSharedProps supplies props merged into every page's props under keys
// the descriptor does not already claim.
func WithSharedProps(props map[string]any) RouterOption {
	return func(r *Router) { r.shared = props }
}

// WithMetrics wires navigation counters and latency observation.
func WithMetrics(m *Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// WithTracer wires distributed tracing for navigations.
func WithTracer(t oteltrace.Tracer) RouterOption {
	return func(r *Router) { r.tracer = t }
}

// NewRouter builds a router around the given collaborators. nav carries the
// active page at bootstrap; the router owns it afterwards.
func NewRouter(pages *page.Loader, modules *module.Loader, layouts *layout.Resolver, renderer *render.Renderer, container *vdom.Container, nav *page.NavigationContext, logger *slog.Logger, opts ...RouterOption) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if nav == nil {
		nav = &page.NavigationContext{}
	}
	r := &Router{
		pages:     pages,
		modules:   modules,
		layouts:   layouts,
		renderer:  renderer,
		container: container,
		nav:       nav,
		env:       Env{}.withDefaults(),
		logger:    logger.With("component", "router"),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the router's current lifecycle state.
func (r *Router) State() State {
	return State(r.state.Load())
}

// CurrentPath returns the normalized path of the active page.
func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nav.Path
}

// Subscribe registers a commit listener and returns its unsubscribe func.
func (r *Router) Subscribe(l Listener) func() {
	r.lmu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.lmu.Unlock()
	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

// Navigate performs a full page transition to rawPath. replace controls
// whether the history entry is replaced instead of pushed. A navigation
// superseded by a newer one returns nil after discarding its work.
func (r *Router) Navigate(ctx context.Context, rawPath string, replace bool) error {
	tok := r.token.Add(1)
	start := time.Now()

	var span oteltrace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, "nav.navigate", oteltrace.WithAttributes(
			attribute.String("nav.path", rawPath),
			attribute.Bool("nav.replace", replace),
		))
		defer span.End()
	}

	entry, err := r.pages.Normalizer().HistoryEntry(rawPath)
	if err != nil {
		return r.fail(tok, span, rawPath, errors.FromError(err, "E203"))
	}
	key := routepath.StripQueryFragment(entry)

	r.state.Store(int32(StateLoading))
	r.mu.Lock()
	active := *r.nav
	r.mu.Unlock()
	desc, err := r.pages.Load(ctx, &active, rawPath)
	if err != nil {
		return r.fail(tok, span, key, err)
	}
	if r.stale(tok) {
		return nil
	}

	handle, err := r.modules.Load(ctx, desc.RouteID)
	if err != nil {
		return r.fail(tok, span, key, err)
	}
	if r.stale(tok) {
		return nil
	}

	mode := effectiveMode(handle, desc)
	if mode == page.ModeServerOnly {
		r.logger.Info("route is server-only, handing off", "path", key)
		r.observe(resultReload, start)
		r.state.Store(int32(StateIdle))
		r.env.Reloader.Reload(key)
		return nil
	}

	r.state.Store(int32(StateComposing))
	resolved := r.layouts.Resolve(ctx, desc)
	props := r.buildProps(desc, key)
	tree, err := r.renderer.Compose(handle, resolved, props)
	if err != nil {
		return r.fail(tok, span, key, err)
	}
	if r.stale(tok) {
		return nil
	}

	r.mu.Lock()
	if r.stale(tok) {
		r.mu.Unlock()
		return nil
	}

	r.state.Store(int32(StatePainting))
	if !r.renderer.Paint(ctx, r.container, tree, mode) {
		// One fresh rebuild with re-derived props before giving up.
		r.logger.Warn("paint produced no content, retrying fresh", "path", key)
		tree, err = r.renderer.Compose(handle, resolved, r.buildProps(desc, key))
		if err != nil {
			r.mu.Unlock()
			return r.fail(tok, span, key, err)
		}
		if !r.renderer.Paint(ctx, r.container, tree, page.ModeFresh) {
			r.mu.Unlock()
			return r.fail(tok, span, key, errors.New("E501").WithPath(key))
		}
	}

	r.commit(key, entry, desc, tree, replace)
	r.state.Store(int32(StateCommitted))
	r.mu.Unlock()

	r.dispatch(key, desc)
	r.observe(resultCommitted, start)
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
	r.logger.Info("navigation committed", "path", key, "mode", mode.String(), "elapsed", time.Since(start))
	return nil
}

// Refresh recomposes and updates the active page in place. It is the
// hot-swap entry point: after a module cache purge the next load picks up
// the replacement source, and the live tree is patched rather than rebuilt.
func (r *Router) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc := r.nav.Descriptor
	if desc == nil {
		return errors.Newf(errors.CategoryRender, "refresh with no active page")
	}
	handle, err := r.modules.Load(ctx, desc.RouteID)
	if err != nil {
		return err
	}
	resolved := r.layouts.Resolve(ctx, desc)
	next, err := r.renderer.Compose(handle, resolved, r.buildProps(desc, r.nav.Path))
	if err != nil {
		return err
	}
	if r.currentTree == nil {
		r.renderer.Paint(ctx, r.container, next, page.ModeFresh)
		r.currentTree = next
		return nil
	}
	if err := r.renderer.Update(r.container, r.currentTree, next); err != nil {
		return err
	}
	r.currentTree = next
	return nil
}

func (r *Router) stale(tok uint64) bool {
	if tok == r.token.Load() {
		return false
	}
	r.logger.Debug("navigation superseded, discarding", "token", tok)
	if r.metrics != nil {
		r.metrics.Navigations.WithLabelValues(resultStale).Inc()
	}
	return true
}

// fail escalates a navigation failure to a full document reload so the
// user never lands on a blank or half-painted page.
func (r *Router) fail(tok uint64, span oteltrace.Span, path string, err error) error {
	if r.stale(tok) {
		return nil
	}
	r.state.Store(int32(StateFailed))
	if r.metrics != nil {
		r.metrics.Navigations.WithLabelValues(resultFailed).Inc()
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.CodeOf(err))
	}
	r.logger.Error("navigation failed, falling back to document load",
		"path", path, "code", errors.CodeOf(err), "category", string(errors.CategoryOf(err)), "err", err)
	r.env.Reloader.Reload(path)
	return err
}

// commit applies a successful navigation's side effects. Caller holds mu.
// The history entry keeps the raw query and fragment; the navigation context
// records the normalized key.
func (r *Router) commit(key, entry string, desc *page.Descriptor, tree *vdom.Node, replace bool) {
	if replace {
		r.env.History.Replace(entry)
	} else {
		r.env.History.Push(entry)
	}
	r.syncMeta(desc.Meta)
	r.nav.Path = key
	r.nav.Descriptor = desc
	r.currentTree = tree
}

// dispatch notifies commit listeners. Runs outside mu so a listener may call
// back into the router.
func (r *Router) dispatch(key string, desc *page.Descriptor) {
	r.lmu.Lock()
	ls := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		ls = append(ls, l)
	}
	r.lmu.Unlock()
	for _, l := range ls {
		l(key, desc)
	}
}

func (r *Router) syncMeta(m *page.Meta) {
	if m == nil {
		return
	}
	if m.Title != "" {
		r.env.Meta.SetTitle(m.Title)
	}
	if m.Description != "" {
		r.env.Meta.SetMeta("description", m.Description)
	}
	if m.Robots != "" {
		r.env.Meta.SetMeta("robots", m.Robots)
	}
	if m.OGTitle != "" {
		r.env.Meta.SetMeta("og:title", m.OGTitle)
	}
	if m.OGDesc != "" {
		r.env.Meta.SetMeta("og:description", m.OGDesc)
	}
	if m.OGImage != "" {
		r.env.Meta.SetMeta("og:image", m.OGImage)
	}
}

// buildProps derives the full prop set for a page invocation. Route data
// wins over shared props on key collision. routePath and url are
// synthesized when the descriptor omits them: the navigation target and the
// current document location respectively.
func (r *Router) buildProps(desc *page.Descriptor, target string) map[string]any {
	props := make(map[string]any, len(desc.Props)+len(r.shared)+4)
	for k, v := range r.shared {
		props[k] = v
	}
	for k, v := range desc.Props {
		props[k] = v
	}
	if len(desc.Params) > 0 {
		props["params"] = desc.Params
	}
	if len(desc.Query) > 0 {
		props["query"] = desc.Query
	}
	routePath := desc.RoutePath
	if routePath == "" {
		routePath = target
	}
	props["routePath"] = routePath
	url := desc.URL
	if url == "" {
		url = r.env.History.Location()
	}
	props["url"] = url
	return props
}

func (r *Router) observe(result string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.Navigations.WithLabelValues(result).Inc()
	r.metrics.Duration.Observe(time.Since(start).Seconds())
}

// effectiveMode resolves the render mode: the module's own declaration wins
// over the descriptor's, and unset falls back to a fresh paint.
func effectiveMode(h *module.Handle, d *page.Descriptor) page.RenderMode {
	if h.Mode != page.ModeUnset {
		return h.Mode
	}
	if d.Mode != page.ModeUnset {
		return d.Mode
	}
	return page.ModeFresh
}
