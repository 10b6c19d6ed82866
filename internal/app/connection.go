package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

var errAlreadyConnected = errors.New("devsync: already connected")

// ConnectionConfig configures the connection manager.
type ConnectionConfig struct {
	Name       string
	InstanceID string

	// DialAttempts is how many times Connect tries the extension before
	// declaring the tool absent. Values below 1 mean 1.
	DialAttempts int

	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// ConnectionManager owns the single link to the debugging tool.
//
// Send holds the read lock for the duration of a transport send and
// Reconnect holds the write lock across disconnect and connect, so a send is
// delivered to exactly one connection.
type ConnectionManager struct {
	ext     ports.Extension
	cfg     ConnectionConfig
	state   func() domain.Snapshot
	deliver func(raw []byte)
	logger  log.Logger

	mu   sync.RWMutex
	conn ports.Connection
}

// NewConnectionManager creates a manager. ext may be nil (tool absent).
// state supplies the snapshot announced on Init; deliver receives every raw
// message emitted by the tool.
func NewConnectionManager(
	ext ports.Extension,
	cfg ConnectionConfig,
	state func() domain.Snapshot,
	deliver func(raw []byte),
	logger log.Logger,
) *ConnectionManager {
	if cfg.DialAttempts < 1 {
		cfg.DialAttempts = 1
	}
	return &ConnectionManager{
		ext:     ext,
		cfg:     cfg,
		state:   state,
		deliver: deliver,
		logger:  logger,
	}
}

// ToolPresent reports whether a debugging tool was configured at all.
func (m *ConnectionManager) ToolPresent() bool {
	return m.ext != nil
}

// Connect opens the connection. It returns ErrToolAbsent (wrapped) when no
// tool is configured or none answered within DialAttempts.
func (m *ConnectionManager) Connect(ctx context.Context) (ports.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectLocked(ctx)
}

// Disconnect closes the connection, if any.
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

// Reconnect discards the tool-side session by closing and reopening the
// connection.
func (m *ConnectionManager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disconnectLocked()
	reconnects.Inc()
	_, err := m.connectLocked(ctx)
	return err
}

// Connected reports whether a connection is open.
func (m *ConnectionManager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn != nil
}

// Send forwards one action to the tool. It reports false, with no error,
// when no connection is open.
func (m *ConnectionManager) Send(action string, state domain.Snapshot) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.conn == nil {
		return false, nil
	}
	if err := m.conn.Send(action, state); err != nil {
		return false, fmt.Errorf("send %q: %w", action, err)
	}
	return true, nil
}

func (m *ConnectionManager) connectLocked(ctx context.Context) (ports.Connection, error) {
	if m.ext == nil {
		return nil, domain.ErrToolAbsent
	}
	if m.conn != nil {
		return m.conn, errAlreadyConnected
	}

	cfg := ports.ConnectConfig{Name: m.cfg.Name, InstanceID: m.cfg.InstanceID}
	b := newBackoff(m.cfg.BackoffInitial, m.cfg.BackoffMax)

	var (
		conn ports.Connection
		err  error
	)
	for attempt := 1; ; attempt++ {
		conn, err = m.ext.Connect(ctx, cfg)
		if err == nil {
			break
		}
		m.logger.Debug("tool connect failed",
			log.Int("attempt", attempt),
			log.Err(err),
		)
		if attempt >= m.cfg.DialAttempts {
			return nil, fmt.Errorf("%w: %v", domain.ErrToolAbsent, err)
		}
		if werr := b.Wait(ctx); werr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrToolAbsent, werr)
		}
	}

	var initial domain.Snapshot
	if m.state != nil {
		initial = m.state()
	}
	if err := conn.Init(cfg, initial); err != nil {
		conn.Unsubscribe()
		_ = m.ext.Disconnect()
		return nil, fmt.Errorf("init tool connection: %w", err)
	}
	conn.Subscribe(m.deliver)

	m.conn = conn
	toolConnected.Set(1)
	m.logger.Info("tool connected", log.String("instance", m.cfg.InstanceID))
	return conn, nil
}

func (m *ConnectionManager) disconnectLocked() {
	if m.conn == nil {
		return
	}
	m.conn.Unsubscribe()
	if err := m.ext.Disconnect(); err != nil {
		m.logger.Warn("tool disconnect failed", log.Err(err))
	}
	m.conn = nil
	toolConnected.Set(0)
	m.logger.Info("tool disconnected", log.String("instance", m.cfg.InstanceID))
}
