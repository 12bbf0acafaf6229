package nav

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Click describes an activated link as observed by the hosting environment.
type Click struct {
	// Href is the link target as authored.
	Href string

	// PageURL is the full URL of the current document.
	PageURL string

	// TargetFrame is the link's target frame ("", "_self", "_blank", ...).
	TargetFrame string

	// Download is true when the link requests a download.
	Download bool

	// Modified is true when a modifier key was held (open-in-new-tab
	// gestures must keep their native behavior).
	Modified bool
}

// Decide reports whether a click should be handled as a single-page
// transition, and the pathname+search+hash to navigate to when it should.
// It never errors: anything it cannot claim falls through to the native
// navigation.
func Decide(c Click) (string, bool) {
	if c.Download || c.Modified {
		return "", false
	}
	if c.TargetFrame != "" && c.TargetFrame != "_self" {
		return "", false
	}
	href := strings.TrimSpace(c.Href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		// mailto:, tel:, javascript: and friends are never ours.
		return "", false
	}

	base, err := url.Parse(c.PageURL)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(u)
	if resolved.Host != base.Host || resolved.Scheme != base.Scheme {
		return "", false
	}

	path := resolved.Path
	if path == "" {
		path = "/"
	}
	if resolved.RawQuery != "" {
		path += "?" + resolved.RawQuery
	}
	if resolved.Fragment != "" {
		path += "#" + resolved.Fragment
	}
	return path, true
}

// Interceptor claims qualifying link activations and forwards them to the
// router. The router may not be constructed yet when the first click lands
// (links become live before the engine finishes booting), so dispatch polls
// briefly for a bound router and falls back to a document load.
type Interceptor struct {
	mu       sync.Mutex
	navigate func(ctx context.Context, path string, replace bool) error

	reloader Reloader
	logger   *slog.Logger

	pollInterval time.Duration
	maxPolls     int
}

// InterceptorOption configures an Interceptor.
type InterceptorOption func(*Interceptor)

// WithBindPoll tunes how long dispatch waits for the router to be bound.
func WithBindPoll(interval time.Duration, attempts int) InterceptorOption {
	return func(i *Interceptor) {
		i.pollInterval = interval
		i.maxPolls = attempts
	}
}

// NewInterceptor builds an interceptor that escalates to reloader when no
// router binds in time.
func NewInterceptor(reloader Reloader, logger *slog.Logger, opts ...InterceptorOption) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	if reloader == nil {
		reloader = nopReloader{}
	}
	i := &Interceptor{
		reloader:     reloader,
		logger:       logger.With("component", "interceptor"),
		pollInterval: 50 * time.Millisecond,
		maxPolls:     20,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Bind attaches the router's navigate entry point.
func (i *Interceptor) Bind(r *Router) {
	i.mu.Lock()
	i.navigate = r.Navigate
	i.mu.Unlock()
}

func (i *Interceptor) bound() func(context.Context, string, bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.navigate
}

// HandleClick claims a qualifying click and reports whether it did. The
// navigation itself runs on the calling goroutine.
func (i *Interceptor) HandleClick(ctx context.Context, c Click) bool {
	path, ok := Decide(c)
	if !ok {
		return false
	}
	i.dispatch(ctx, path, false)
	return true
}

// HandlePop handles a history traversal (back/forward). The entry already
// exists, so the navigation replaces instead of pushing.
func (i *Interceptor) HandlePop(ctx context.Context, path string) {
	i.dispatch(ctx, path, true)
}

func (i *Interceptor) dispatch(ctx context.Context, path string, replace bool) {
	nav := i.bound()
	for n := 0; nav == nil && n < i.maxPolls; n++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(i.pollInterval):
		}
		nav = i.bound()
	}
	if nav == nil {
		i.logger.Warn("no router bound, falling back to document load", "path", path)
		i.reloader.Reload(path)
		return
	}
	// Navigate escalates failures itself; nothing to do with the error here.
	_ = nav(ctx, path, replace)
}
