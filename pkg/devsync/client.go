// Package devsync keeps a development session's modules in step with the
// build. It consumes invalidation messages from the dev server's WebSocket
// feed: a swapped module is purged from the module cache and the active page
// refreshed in place, so edits appear without a full document reload.
//
// The feed's server side is the build tooling's concern; this package is
// only the consuming end.
package devsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strada-dev/strada/pkg/module"
)

// MessageType classifies a dev server message.
type MessageType string

const (
	// TypeModule announces a rebuilt module; the engine hot-swaps it.
	TypeModule MessageType = "module"

	// TypeReload requests a full document reload, for changes the engine
	// cannot apply in place.
	TypeReload MessageType = "reload"
)

// Message is one frame from the dev server feed.
type Message struct {
	Type   MessageType `json:"type"`
	Module string      `json:"module,omitempty"`
	File   string      `json:"file,omitempty"`
}

// Refresher re-renders the active page in place after a swap. Implemented
// by the navigation router.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Reloader performs a full document reload.
type Reloader interface {
	Reload(path string)
}

// Client consumes the dev server feed.
type Client struct {
	url       string
	modules   *module.Cache
	refresher Refresher
	reloader  Reloader
	locate    func() string
	logger    *slog.Logger

	dialer  *websocket.Dialer
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithReloader wires the full-reload escalation for TypeReload messages.
func WithReloader(r Reloader) Option {
	return func(c *Client) { c.reloader = r }
}

// WithLocation supplies the active page's path, so a reload escalation
// lands the user back on the page they were editing rather than at the root.
func WithLocation(f func() string) Option {
	return func(c *Client) { c.locate = f }
}

// WithBackoff sets the reconnect delay after a dropped feed.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a feed client. url is the ws:// endpoint of the dev server.
func New(url string, modules *module.Cache, refresher Refresher, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		url:       url,
		modules:   modules,
		refresher: refresher,
		logger:    logger.With("component", "devsync"),
		dialer:    websocket.DefaultDialer,
		backoff:   time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects to the feed and processes messages until ctx is cancelled,
// reconnecting with a fixed backoff when the connection drops.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("feed dropped, reconnecting", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

func (c *Client) consume(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.logger.Debug("feed connected", "url", c.url)

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed feed message", "err", err)
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *Client) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeModule:
		if msg.Module == "" {
			return
		}
		c.modules.Delete(msg.Module)
		c.logger.Info("module swapped", "module", msg.Module, "file", msg.File)
		if c.refresher != nil {
			if err := c.refresher.Refresh(ctx); err != nil {
				c.logger.Warn("refresh after swap failed", "module", msg.Module, "err", err)
			}
		}
	case TypeReload:
		path := "/"
		if c.locate != nil {
			if p := c.locate(); p != "" {
				path = p
			}
		}
		c.logger.Info("full reload requested", "file", msg.File, "path", path)
		if c.reloader != nil {
			c.reloader.Reload(path)
		}
	default:
		c.logger.Debug("ignoring feed message", "type", string(msg.Type))
	}
}
