package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// BridgeConfig contains configuration for the bridge.
type BridgeConfig struct {
	Name       string
	InstanceID string

	// QueueSize bounds the number of tool messages waiting for the worker.
	QueueSize int

	DialAttempts   int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Dependencies are the collaborators a bridge synchronizes.
type Dependencies struct {
	Store            ports.Store
	Extension        ports.Extension
	Environment      ports.Environment
	NavigationSource ports.NavigationSource
	CustomNavigator  ports.RouteNavigator
	RouterHistory    ports.HistoryPusher
	Logger           log.Logger
	Emitter          SyncEventEmitter
}

// Bridge wires the connection manager, outbound sync, interpreter and
// navigation correlator together. Tool messages are queued and applied one
// at a time by Run.
type Bridge struct {
	config  BridgeConfig
	store   ports.Store
	logger  log.Logger
	replays *replayTracker

	conn     *ConnectionManager
	outbound *OutboundSync
	inbound  *Interpreter
	nav      *NavigationCorrelator

	inbox     chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge creates a bridge with the given dependencies.
func NewBridge(config BridgeConfig, deps Dependencies) *Bridge {
	if config.QueueSize < 1 {
		config.QueueSize = 64
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	env := deps.Environment
	if env == nil {
		env = ports.DirectEnvironment{}
	}

	b := &Bridge{
		config:  config,
		store:   deps.Store,
		logger:  logger,
		replays: newReplayTracker(logger),
		inbox:   make(chan []byte, config.QueueSize),
		done:    make(chan struct{}),
	}

	b.conn = NewConnectionManager(
		deps.Extension,
		ConnectionConfig{
			Name:           config.Name,
			InstanceID:     config.InstanceID,
			DialAttempts:   config.DialAttempts,
			BackoffInitial: config.BackoffInitial,
			BackoffMax:     config.BackoffMax,
		},
		deps.Store.State,
		b.deliver,
		logger,
	)
	b.nav = NewNavigationCorrelator(deps.Store, deps.NavigationSource, Navigators{
		Custom:      deps.CustomNavigator,
		Environment: env,
		History:     deps.RouterHistory,
	}, logger)
	b.outbound = NewOutboundSync(deps.Store, b.conn, b.replays, logger, deps.Emitter)
	b.inbound = NewInterpreter(deps.Store, env, b.conn, b.nav, b.replays, logger, deps.Emitter)

	return b
}

// Open starts observing the store and the router and connects to the tool.
// A missing tool is not an error: synchronization is then a no-op.
func (b *Bridge) Open(ctx context.Context) error {
	b.outbound.Start()

	if _, err := b.conn.Connect(ctx); err != nil {
		switch {
		case errors.Is(err, domain.ErrToolAbsent):
			b.logger.Info("debugging tool not available, sync disabled", log.Err(err))
		case errors.Is(err, errAlreadyConnected):
		default:
			b.logger.Warn("connect to debugging tool failed", log.Err(err))
		}
	}

	b.nav.Start()
	if kind := b.nav.NavigatorKind(); kind != "" {
		b.logger.Debug("route navigator selected", log.String("navigator", kind))
	}
	return nil
}

// Run applies queued tool messages until ctx is canceled or the bridge is
// closed.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		case raw := <-b.inbox:
			_ = b.inbound.Handle(ctx, raw)
		}
	}
}

// HandleMessage applies one tool message on the calling goroutine.
// It must not be called concurrently with Run.
func (b *Bridge) HandleMessage(ctx context.Context, raw []byte) error {
	return b.inbound.Handle(ctx, raw)
}

// Enqueue queues a tool message for Run. It blocks while the queue is full.
func (b *Bridge) Enqueue(ctx context.Context, raw []byte) error {
	select {
	case <-b.done:
		return domain.ErrNotRunning
	default:
	}

	msg := append([]byte(nil), raw...)
	select {
	case b.inbox <- msg:
		return nil
	case <-b.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether the tool connection is open.
func (b *Bridge) Connected() bool {
	return b.conn.Connected()
}

// ToolPresent reports whether a debugging tool was configured.
func (b *Bridge) ToolPresent() bool {
	return b.conn.ToolPresent()
}

// InFlight returns the replay currently being applied, if any.
func (b *Bridge) InFlight() *domain.Replay {
	return b.replays.Current()
}

// Close stops synchronization and disconnects from the tool. Queued
// messages that were not applied are dropped.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.nav.Stop()
		b.outbound.Stop()
		b.conn.Disconnect()
	})
}

// deliver is the connection's message handler.
func (b *Bridge) deliver(raw []byte) {
	if err := b.Enqueue(context.Background(), raw); err != nil {
		b.logger.Debug("dropping tool message after close")
	}
}
