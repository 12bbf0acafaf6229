// Package prefetch warms the descriptor and module caches ahead of real
// navigations, so a later transition to a warmed route needs no network.
//
// Two strategies exist. The single strategy fetches each configured route's
// document the same way a navigation would, in parallel, each route
// swallowing its own failure. The batch strategy asks a dedicated endpoint
// for every route's descriptor and serialized module source in one request
// and compiles the sources locally. Warming never competes with first paint:
// both strategies start only after a configurable delay.
package prefetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/strada-dev/strada/internal/errors"
	"github.com/strada-dev/strada/pkg/layout"
	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/nav"
	"github.com/strada-dev/strada/pkg/page"
)

// BatchPath is the well-known batch endpoint path, relative to the base path.
const BatchPath = "/__prefetch/batch"

// Strategy selects how routes are warmed.
type Strategy string

const (
	StrategySingle Strategy = "single"
	StrategyBatch  Strategy = "batch"
)

// Indicator is an optional blocking overlay shown while warming. It is
// hidden only after every entry has settled, success or failure.
type Indicator interface {
	Show()
	Hide()
}

// BatchEntry is one route's payload from the batch endpoint.
type BatchEntry struct {
	// Route is the route's path.
	Route string `json:"route"`

	// Body is the page module's serialized source.
	Body string `json:"body"`

	// PageData is the route's descriptor.
	PageData *page.Descriptor `json:"pageData"`

	// Layouts maps each layout path in the chain to its serialized source.
	Layouts map[string]string `json:"layouts,omitempty"`
}

// Config configures a Manager.
type Config struct {
	// Routes is the ordered allow/deny pattern list (see Matcher).
	Routes []string

	// Strategy selects single or batch warming (default: single).
	Strategy Strategy

	// Delay postpones warming so it never competes with first paint.
	Delay time.Duration

	// Indicator, when set, blocks the page while warming.
	Indicator Indicator

	// Origin is the scheme+host batch requests target and the root that
	// relative chunk imports are rewritten against.
	Origin string

	// Client is the HTTP client for the batch endpoint
	// (default: http.DefaultClient).
	Client *http.Client
}

// Manager warms caches for configured routes.
type Manager struct {
	cfg     Config
	matcher *Matcher
	pages   *page.Loader
	modules *module.Loader
	layouts *layout.Resolver
	logger  *slog.Logger
	metrics *nav.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics wires prefetch outcome counters.
func WithMetrics(m *nav.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// NewManager builds a prefetch manager over the same loaders the router
// uses, so warmed entries land in the caches real navigations read.
func NewManager(cfg Config, pages *page.Loader, modules *module.Loader, layouts *layout.Resolver, logger *slog.Logger, opts ...Option) *Manager {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySingle
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:     cfg,
		matcher: NewMatcher(cfg.Routes),
		pages:   pages,
		modules: modules,
		layouts: layouts,
		logger:  logger.With("component", "prefetch"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Matcher returns the compiled route pattern list, for hosts that also want
// to gate hover- or viewport-triggered warming on it.
func (m *Manager) Matcher() *Matcher {
	return m.matcher
}

// Run waits out the warm-up delay and then executes the configured
// strategy, blocking until every entry has settled. Individual route
// failures are swallowed; only an aborted delay or an outright batch
// request failure is returned.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.Delay):
		}
	}

	if m.cfg.Indicator != nil {
		m.cfg.Indicator.Show()
		defer m.cfg.Indicator.Hide()
	}

	switch m.cfg.Strategy {
	case StrategyBatch:
		return m.warmBatch(ctx)
	default:
		m.warmSingle(ctx)
		return nil
	}
}

// warmSingle fetches each concrete configured route in parallel. Every route
// settles independently.
func (m *Manager) warmSingle(ctx context.Context) {
	routes := m.matcher.Routes()
	var wg sync.WaitGroup
	for _, route := range routes {
		wg.Add(1)
		go func(route string) {
			defer wg.Done()
			m.warmRoute(ctx, route)
		}(route)
	}
	wg.Wait()
}

func (m *Manager) warmRoute(ctx context.Context, route string) {
	desc, err := m.pages.Load(ctx, nil, route)
	if err != nil {
		m.logger.Debug("prefetch miss", "route", route, "code", errors.CodeOf(err), "err", err)
		m.observe(StrategySingle, "miss")
		return
	}
	if _, err := m.modules.Load(ctx, desc.RouteID); err != nil {
		m.logger.Debug("prefetch module miss", "route", route, "module", desc.RouteID, "err", err)
		m.observe(StrategySingle, "miss")
		return
	}
	m.layouts.Resolve(ctx, desc)
	m.observe(StrategySingle, "warmed")
	m.logger.Debug("route warmed", "route", route)
}

// warmBatch asks the batch endpoint for every configured route's descriptor
// and serialized module sources, then compiles and caches them locally.
// Entries settle concurrently and independently.
func (m *Manager) warmBatch(ctx context.Context) error {
	entries, err := m.fetchBatch(ctx)
	if err != nil {
		m.logger.Warn("batch prefetch failed", "err", err)
		m.observe(StrategyBatch, "failed")
		return err
	}

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry BatchEntry) {
			defer wg.Done()
			m.installEntry(ctx, entry)
		}(entry)
	}
	wg.Wait()
	return nil
}

func (m *Manager) fetchBatch(ctx context.Context) ([]BatchEntry, error) {
	url := m.cfg.Origin + m.pages.Normalizer().BasePath() + BatchPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New("E101").WithPath(BatchPath).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.cfg.Client.Do(req)
	if err != nil {
		return nil, errors.New("E101").WithPath(BatchPath).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("E102").WithPath(BatchPath).WithDetail(resp.Status)
	}

	var entries []BatchEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.New("E202").WithPath(BatchPath).Wrap(err)
	}
	return entries, nil
}

// installEntry caches one batch entry: the descriptor under the route's
// cache key, the page module, and each layout module. Serialized sources are
// compiled after their relative chunk imports are rewritten to absolute
// references, since inline-compiled code cannot resolve relative imports.
func (m *Manager) installEntry(ctx context.Context, entry BatchEntry) {
	if entry.PageData == nil || entry.PageData.RouteID == "" {
		m.logger.Debug("batch entry without descriptor, skipping", "route", entry.Route)
		m.observe(StrategyBatch, "miss")
		return
	}

	key, err := m.pages.Normalizer().CacheKey(entry.Route)
	if err != nil {
		m.logger.Debug("batch entry with bad route, skipping", "route", entry.Route, "err", err)
		m.observe(StrategyBatch, "miss")
		return
	}

	source := module.RewriteImports([]byte(entry.Body), m.cfg.Origin)
	if _, err := m.modules.LoadSerialized(ctx, entry.PageData.RouteID, source); err != nil {
		m.logger.Debug("batch entry module failed, skipping", "route", entry.Route, "err", err)
		m.observe(StrategyBatch, "miss")
		return
	}

	for layoutPath, layoutSrc := range entry.Layouts {
		rewritten := module.RewriteImports([]byte(layoutSrc), m.cfg.Origin)
		if _, err := m.modules.LoadSerialized(ctx, layoutPath, rewritten); err != nil {
			m.logger.Debug("batch layout failed, keeping entry", "route", entry.Route, "layout", layoutPath, "err", err)
		}
	}

	m.pages.Cache().Set(key, entry.PageData)
	m.observe(StrategyBatch, "warmed")
	m.logger.Debug("route warmed from batch", "route", key)
}

func (m *Manager) observe(strategy Strategy, result string) {
	if m.metrics == nil {
		return
	}
	m.metrics.Prefetches.WithLabelValues(string(strategy), result).Inc()
}
