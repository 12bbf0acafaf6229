package strada

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/strada-dev/strada/pkg/module"
	"github.com/strada-dev/strada/pkg/nav"
	"github.com/strada-dev/strada/pkg/prefetch"
	"github.com/strada-dev/strada/pkg/render"
	"github.com/strada-dev/strada/pkg/vdom"
)

// Config is the main engine configuration.
//
//	engine := strada.New(strada.Config{
//	    Origin:   "https://example.com",
//	    BasePath: "/app",
//	    Prefetch: strada.PrefetchConfig{
//	        Routes:   []string{"/about", "/pricing"},
//	        Strategy: prefetch.StrategyBatch,
//	    },
//	})
type Config struct {
	// Origin is the scheme+host documents and bundles are fetched from.
	// Required for any network activity.
	Origin string

	// BasePath is the path prefix the application is mounted under.
	// Cache keys and fetches are qualified with it. Default: "".
	BasePath string

	// Client is the HTTP client for document and bundle fetches.
	// If nil, http.DefaultClient is used.
	Client *http.Client

	// Logger is the structured logger for the engine.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Container is the paint target. If nil an empty container is created;
	// supply one built from existing markup to enable reconciled paints.
	Container *vdom.Container

	// Env supplies the hosting environment's history, metadata and reload
	// collaborators. Zero-value fields become no-ops.
	Env nav.Env

	// Source fetches serialized module code by identity (see pkg/assets).
	// Optional; without it only registered modules resolve.
	Source module.Source

	// Compiler is the inline-data execution primitive turning serialized
	// source into exports. Required for batch prefetch and Source loads.
	Compiler module.Compiler

	// FrameWaiter lets the paint surface commit between mutations.
	// If nil, paints proceed without waiting.
	FrameWaiter render.FrameWaiter

	// LegacyLayout is the single fallback layout path used when a
	// descriptor carries no explicit chain. Empty disables the fallback.
	LegacyLayout string

	// SharedProps are merged into every page's props under keys the
	// descriptor does not claim.
	SharedProps map[string]any

	// Prefetch configures background cache warming.
	Prefetch PrefetchConfig

	// Observability configures metrics and tracing.
	Observability ObservabilityConfig

	// DevSync configures the development hot-swap feed.
	DevSync DevSyncConfig
}

// PrefetchConfig configures background cache warming.
type PrefetchConfig struct {
	// Routes is the ordered allow/deny pattern list. Empty disables
	// prefetching.
	Routes []string

	// Strategy selects single or batch warming. Default: single.
	Strategy prefetch.Strategy

	// Delay postpones warming so it never competes with first paint.
	// Default: 2 seconds.
	Delay time.Duration

	// Indicator, when set, blocks the page while warming.
	Indicator prefetch.Indicator
}

// ObservabilityConfig configures metrics and tracing.
type ObservabilityConfig struct {
	// Metrics enables Prometheus navigation metrics.
	Metrics bool

	// MetricsConfig tunes registration when Metrics is set.
	MetricsConfig nav.MetricsConfig

	// Tracing enables OTel spans around navigations.
	Tracing bool

	// TracerName overrides the tracer name. Default: "strada".
	TracerName string
}

// DevSyncConfig configures the development hot-swap feed.
type DevSyncConfig struct {
	// URL is the ws:// endpoint of the dev server feed. Empty disables
	// devsync.
	URL string

	// Backoff is the reconnect delay after a dropped feed.
	// Default: 1 second.
	Backoff time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Prefetch: DefaultPrefetchConfig(),
		DevSync:  DefaultDevSyncConfig(),
	}
}

// DefaultPrefetchConfig returns the default prefetch configuration.
func DefaultPrefetchConfig() PrefetchConfig {
	return PrefetchConfig{
		Strategy: prefetch.StrategySingle,
		Delay:    2 * time.Second,
	}
}

// DefaultDevSyncConfig returns the default devsync configuration.
func DefaultDevSyncConfig() DevSyncConfig {
	return DevSyncConfig{
		Backoff: time.Second,
	}
}
