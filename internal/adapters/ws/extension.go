// Package ws connects to a debugging tool over a websocket.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

const (
	defaultHandshakeTimeout = 5 * time.Second
	defaultPingInterval     = 30 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithPingInterval sets how often keepalive pings are sent. The read
// deadline is twice the interval.
func WithPingInterval(d time.Duration) Option {
	return func(e *Extension) {
		if d > 0 {
			e.pingInterval = d
		}
	}
}

// WithHandshakeTimeout bounds each dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(e *Extension) {
		if d > 0 {
			e.dialer.HandshakeTimeout = d
		}
	}
}

// WithHeader adds a header to every handshake request.
func WithHeader(key, value string) Option {
	return func(e *Extension) {
		e.header.Add(key, value)
	}
}

// Extension dials the tool's websocket endpoint.
type Extension struct {
	url          string
	dialer       websocket.Dialer
	header       http.Header
	pingInterval time.Duration
	logger       log.Logger

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

// NewExtension creates an extension for the tool listening at url
// (ws:// or wss://).
func NewExtension(url string, opts ...Option) *Extension {
	e := &Extension{
		url: url,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		header:       make(http.Header),
		pingInterval: defaultPingInterval,
		logger:       log.NewNoopLogger(),
		conns:        make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect dials the tool. An empty cfg.InstanceID is replaced by a random
// one.
func (e *Extension) Connect(ctx context.Context, cfg ports.ConnectConfig) (ports.Connection, error) {
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	conn, resp, err := e.dialer.DialContext(ctx, e.url, e.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", e.url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", e.url, err)
	}

	c := newConnection(conn, cfg, e.pingInterval, e.logger, e.forget)

	e.mu.Lock()
	e.conns[c] = struct{}{}
	e.mu.Unlock()

	e.logger.Debug("websocket connected",
		log.String("url", e.url),
		log.String("instance", cfg.InstanceID),
	)
	return c, nil
}

// Disconnect closes every open connection.
func (e *Extension) Disconnect() error {
	e.mu.Lock()
	conns := make([]*Connection, 0, len(e.conns))
	for c := range e.conns {
		conns = append(conns, c)
	}
	e.conns = make(map[*Connection]struct{})
	e.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Extension) forget(c *Connection) {
	e.mu.Lock()
	delete(e.conns, c)
	e.mu.Unlock()
}

var _ ports.Extension = (*Extension)(nil)
