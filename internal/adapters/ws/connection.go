package ws

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// ErrClosed is returned by Send after the connection is closed.
var ErrClosed = errors.New("ws: connection closed")

// Connection is one websocket session with the tool.
//
// Writes are serialized by writeMu. A single read goroutine hands every
// text message to the subscribed handler; Unsubscribe and Close never wait
// for it, so a handler that blocks cannot deadlock a reconnect.
type Connection struct {
	conn         *websocket.Conn
	cfg          ports.ConnectConfig
	pingInterval time.Duration
	logger       log.Logger
	onClose      func(*Connection)

	writeMu sync.Mutex

	mu      sync.Mutex
	handler func(raw []byte)

	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, cfg ports.ConnectConfig, pingInterval time.Duration, logger log.Logger, onClose func(*Connection)) *Connection {
	c := &Connection{
		conn:         conn,
		cfg:          cfg,
		pingInterval: pingInterval,
		logger:       logger,
		onClose:      onClose,
		done:         make(chan struct{}),
	}
	go c.readLoop()
	go c.pingLoop()
	return c
}

// Init announces the instance and its initial state.
func (c *Connection) Init(cfg ports.ConnectConfig, state domain.Snapshot) error {
	if cfg.InstanceID == "" {
		cfg.InstanceID = c.cfg.InstanceID
	}
	if cfg.Name == "" {
		cfg.Name = c.cfg.Name
	}
	c.cfg = cfg

	msg, err := encodeFrame(frameInit, cfg.InstanceID, cfg.Name, "", state)
	if err != nil {
		return err
	}
	return c.write(msg)
}

// Send records one action on the tool's timeline.
func (c *Connection) Send(action string, state domain.Snapshot) error {
	msg, err := encodeFrame(frameAction, c.cfg.InstanceID, "", action, state)
	if err != nil {
		return err
	}
	return c.write(msg)
}

// Subscribe sets the handler for messages from the tool.
func (c *Connection) Subscribe(fn func(raw []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

// Unsubscribe removes the handler. Messages read afterwards are dropped.
func (c *Connection) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
}

// Close sends a close frame and closes the socket.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second),
		)
		err = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

func (c *Connection) write(msg []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Connection) readLoop() {
	defer c.Close()

	deadline := 2 * c.pingInterval
	_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("websocket read error", log.Err(err))
				}
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
		if messageType != websocket.TextMessage {
			continue
		}

		c.mu.Lock()
		fn := c.handler
		c.mu.Unlock()
		if fn != nil {
			fn(message)
		}
	}
}

func (c *Connection) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(defaultWriteTimeout)); err != nil {
				c.logger.Debug("ping failed", log.Err(err))
				return
			}
		}
	}
}

var _ ports.Connection = (*Connection)(nil)
