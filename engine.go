// Package strada is a client-side navigation and rendering engine for
// server-rendered applications. It intercepts qualifying link activations,
// loads the target page's embedded descriptor, composes the page module with
// its layout chain, and paints the result in place of a full document load,
// falling back to one whenever a transition cannot complete.
//
// All collaborators — caches, loaders, resolver, renderer, router — are
// constructed once in New and passed by reference, so a test can assemble
// any subset in isolation.
//
//	engine := strada.New(strada.Config{Origin: origin})
//	engine.Register("routes/home", homePage)
//	if err := engine.Hydrate(ctx, initialDoc, "/"); err != nil { ... }
//	engine.Start(ctx)
package strada

import (
	"context"
	"log/slog"

	"github.com/strada-dev/strada/pkg/devsync"
	"github.com/strada-dev/strada/pkg/layout"
	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/nav"
	"github.com/strada-dev/strada/pkg/page"
	"github.com/strada-dev/strada/pkg/prefetch"
	"github.com/strada-dev/strada/pkg/render"
	"github.com/strada-dev/strada/pkg/routepath"
	"github.com/strada-dev/strada/pkg/vdom"
)

// Engine wires the navigation pipeline together.
type Engine struct {
	config Config
	logger *slog.Logger

	pages       *page.Loader
	modules     *module.Loader
	layouts     *layout.Resolver
	renderer    *render.Renderer
	container   *vdom.Container
	navCtx      *page.NavigationContext
	router      *nav.Router
	interceptor *nav.Interceptor
	prefetcher  *prefetch.Manager
	devsync     *devsync.Client
}

// New creates an engine from the given configuration.
func New(cfg Config) *Engine {
	if cfg.Prefetch.Strategy == "" {
		cfg.Prefetch.Strategy = DefaultPrefetchConfig().Strategy
	}
	if cfg.Prefetch.Delay == 0 {
		cfg.Prefetch.Delay = DefaultPrefetchConfig().Delay
	}
	if cfg.DevSync.Backoff == 0 {
		cfg.DevSync.Backoff = DefaultDevSyncConfig().Backoff
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	container := cfg.Container
	if container == nil {
		container = vdom.NewContainer()
	}

	norm := routepath.NewNormalizer(cfg.BasePath)
	pages := page.NewLoader(cfg.Client, cfg.Origin, norm, page.NewCache(), logger)

	var modOpts []module.LoaderOption
	if cfg.Source != nil {
		modOpts = append(modOpts, module.WithSource(cfg.Source))
	}
	if cfg.Compiler != nil {
		modOpts = append(modOpts, module.WithCompiler(cfg.Compiler))
	}
	modules := module.NewLoader(module.NewCache(), logger, modOpts...)

	var layoutOpts []layout.Option
	if cfg.LegacyLayout != "" {
		layoutOpts = append(layoutOpts, layout.WithLegacyLayout(cfg.LegacyLayout))
	}
	layouts := layout.NewResolver(modules, logger, layoutOpts...)

	var renderOpts []render.Option
	if cfg.FrameWaiter != nil {
		renderOpts = append(renderOpts, render.WithFrameWaiter(cfg.FrameWaiter))
	}
	renderer := render.NewRenderer(logger, renderOpts...)

	navCtx := &page.NavigationContext{}
	routerOpts := []nav.RouterOption{
		nav.WithEnv(cfg.Env),
	}
	if len(cfg.SharedProps) > 0 {
		routerOpts = append(routerOpts, nav.WithSharedProps(cfg.SharedProps))
	}
	var metrics *nav.Metrics
	if cfg.Observability.Metrics {
		metrics = nav.NewMetrics(cfg.Observability.MetricsConfig)
		routerOpts = append(routerOpts, nav.WithMetrics(metrics))
	}
	if cfg.Observability.Tracing {
		routerOpts = append(routerOpts, nav.WithTracer(nav.Tracer(cfg.Observability.TracerName)))
	}
	router := nav.NewRouter(pages, modules, layouts, renderer, container, navCtx, logger, routerOpts...)

	interceptor := nav.NewInterceptor(cfg.Env.Reloader, logger)
	interceptor.Bind(router)

	e := &Engine{
		config:      cfg,
		logger:      logger.With("component", "engine"),
		pages:       pages,
		modules:     modules,
		layouts:     layouts,
		renderer:    renderer,
		container:   container,
		navCtx:      navCtx,
		router:      router,
		interceptor: interceptor,
	}

	if len(cfg.Prefetch.Routes) > 0 {
		var pfOpts []prefetch.Option
		if metrics != nil {
			pfOpts = append(pfOpts, prefetch.WithMetrics(metrics))
		}
		e.prefetcher = prefetch.NewManager(prefetch.Config{
			Routes:    cfg.Prefetch.Routes,
			Strategy:  cfg.Prefetch.Strategy,
			Delay:     cfg.Prefetch.Delay,
			Indicator: cfg.Prefetch.Indicator,
			Origin:    cfg.Origin,
			Client:    cfg.Client,
		}, pages, modules, layouts, logger, pfOpts...)
	}
	if cfg.DevSync.URL != "" {
		e.devsync = devsync.New(cfg.DevSync.URL, modules.Cache(), router, logger,
			devsync.WithReloader(cfg.Env.Reloader),
			devsync.WithLocation(router.CurrentPath),
			devsync.WithBackoff(cfg.DevSync.Backoff))
	}
	return e
}

// Register installs a statically linked module export under an identity.
// Routes and layouts register themselves at bootstrap.
func (e *Engine) Register(id string, export any) {
	e.modules.Register(id, export)
}

// Hydrate adopts the server-rendered document the engine booted on: the
// embedded descriptor becomes the active page and its tree is painted
// reconciled over the container's existing markup. Call once before Start.
func (e *Engine) Hydrate(ctx context.Context, doc []byte, rawPath string) error {
	key, err := e.pages.Normalizer().CacheKey(rawPath)
	if err != nil {
		return err
	}
	desc, err := page.ExtractDescriptor(doc)
	if err != nil {
		return err
	}
	e.pages.Cache().Set(key, desc)
	e.navCtx.Path = key
	e.navCtx.Descriptor = desc
	e.logger.Debug("hydrating initial page", "path", key, "route", desc.RouteID)
	return e.router.Navigate(ctx, key, true)
}

// Start launches the engine's background work: prefetch warming and the
// development feed, each only when configured. It returns immediately.
func (e *Engine) Start(ctx context.Context) {
	if e.prefetcher != nil {
		go func() {
			if err := e.prefetcher.Run(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("prefetch run failed", "err", err)
			}
		}()
	}
	if e.devsync != nil {
		go func() {
			if err := e.devsync.Run(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("devsync stopped", "err", err)
			}
		}()
	}
}

// Navigate performs a programmatic page transition.
func (e *Engine) Navigate(ctx context.Context, path string, replace bool) error {
	return e.router.Navigate(ctx, path, replace)
}

// HandleClick forwards a link activation from the hosting environment and
// reports whether the engine claimed it.
func (e *Engine) HandleClick(ctx context.Context, c nav.Click) bool {
	return e.interceptor.HandleClick(ctx, c)
}

// HandlePop forwards a history traversal from the hosting environment.
func (e *Engine) HandlePop(ctx context.Context, path string) {
	e.interceptor.HandlePop(ctx, path)
}

// Refresh re-renders the active page in place.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.router.Refresh(ctx)
}

// Subscribe registers a commit listener and returns its unsubscribe func.
func (e *Engine) Subscribe(l nav.Listener) func() {
	return e.router.Subscribe(l)
}

// Router returns the navigation router.
func (e *Engine) Router() *nav.Router {
	return e.router
}

// Pages returns the page loader.
func (e *Engine) Pages() *page.Loader {
	return e.pages
}

// Modules returns the module loader.
func (e *Engine) Modules() *module.Loader {
	return e.modules
}

// Prefetcher returns the prefetch manager, or nil when no routes are
// configured.
func (e *Engine) Prefetcher() *prefetch.Manager {
	return e.prefetcher
}

// Container returns the paint target.
func (e *Engine) Container() *vdom.Container {
	return e.container
}

// Translator returns the translation lookup extracted from the most recent
// document. It is never nil.
func (e *Engine) Translator() page.Translator {
	return e.pages.Translator()
}
