package devsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/devsync/internal/adapters/ws"
	"github.com/bft-labs/devsync/internal/app"
	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/pkg/log"
)

// Devsync keeps a state store and a time-travel debugging tool in sync.
// Use New() to create an instance, then Start() to begin synchronizing.
type Devsync struct {
	config    Config
	store     Store
	opts      options
	lifecycle *app.Lifecycle
	logger    Logger
	emitter   *eventEmitterWrapper

	plugins []Plugin

	mu     sync.Mutex
	bridge atomic.Pointer[app.Bridge]
	cancel context.CancelFunc
}

// New creates a Devsync instance for store.
// The instance is created in StateStopped; call Start() to begin.
// Returns an error if configuration is invalid.
func New(store Store, cfg Config, opts ...Option) (*Devsync, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", domain.ErrInvalidConfig)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var logger Logger = log.NewNoopLogger()
	if o.logger != nil {
		logger = o.logger
	}

	if o.extension == nil && o.toolURL != "" {
		o.extension = ws.NewExtension(o.toolURL, ws.WithLogger(logger))
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	return &Devsync{
		config:    cfg,
		store:     store,
		opts:      o,
		lifecycle: app.NewLifecycle(logger, emitter),
		logger:    logger,
		emitter:   emitter,
		plugins:   o.plugins,
	}, nil
}

// Start connects to the tool and begins synchronizing in the background.
// A missing or unreachable tool is not an error; synchronization is then a
// no-op until the next Start.
func (d *Devsync) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := d.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Name:       d.config.Name,
		InstanceID: d.config.InstanceID,
		Logger:     d.logger,
		Importer:   d,
	}
	for i, p := range d.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			d.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			d.shutdownPlugins(d.plugins[:i])
			_ = d.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		d.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	bridge := app.NewBridge(app.BridgeConfig{
		Name:           d.config.Name,
		InstanceID:     d.config.InstanceID,
		QueueSize:      d.config.QueueSize,
		DialAttempts:   d.config.DialAttempts,
		BackoffInitial: d.config.BackoffInitial,
		BackoffMax:     d.config.BackoffMax,
	}, app.Dependencies{
		Store:            d.store,
		Extension:        d.opts.extension,
		Environment:      d.opts.environment,
		NavigationSource: d.opts.source,
		CustomNavigator:  d.opts.customNavigator,
		RouterHistory:    d.opts.routerHistory,
		Logger:           d.logger,
		Emitter:          d.emitter,
	})
	if err := bridge.Open(runCtx); err != nil {
		cancel()
		bridge.Close()
		d.shutdownPlugins(d.plugins)
		_ = d.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}
	d.bridge.Store(bridge)

	if err := d.lifecycle.TransitionTo(app.StateRunning, "bridge open"); err != nil {
		cancel()
		d.bridge.Store(nil)
		bridge.Close()
		d.shutdownPlugins(d.plugins)
		return err
	}

	d.lifecycle.AddWorker()
	go d.run(runCtx, bridge)

	return nil
}

// run drives the bridge worker. When the worker exits without Stop having
// taken the bridge (the parent context ended or the worker failed), the
// bridge is closed and plugins are shut down here, so the store has no
// stale subscriber when Start is called again.
func (d *Devsync) run(ctx context.Context, bridge *app.Bridge) {
	defer d.lifecycle.WorkerDone()

	err := bridge.Run(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.bridge.CompareAndSwap(bridge, nil) {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	bridge.Close()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		_ = d.lifecycle.TransitionTo(app.StateStopping, "context done")
		d.shutdownPlugins(d.plugins)
		_ = d.lifecycle.TransitionTo(app.StateStopped, "context done")
		return
	}

	reason := "bridge worker exited"
	if err != nil {
		reason = err.Error()
	}
	d.logger.Error("bridge error", log.String("reason", reason))
	d.shutdownPlugins(d.plugins)
	_ = d.lifecycle.TransitionTo(app.StateCrashed, reason)
}

// Stop disconnects from the tool and stops synchronizing.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (d *Devsync) Stop() error {
	d.mu.Lock()

	if !d.lifecycle.CanStop() {
		d.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := d.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		d.mu.Unlock()
		return err
	}

	if d.cancel != nil {
		d.cancel()
	}
	bridge := d.bridge.Swap(nil)
	d.mu.Unlock()

	if bridge != nil {
		bridge.Close()
	}

	err := d.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	d.shutdownPlugins(d.plugins)

	if err != nil {
		_ = d.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = d.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// shutdownPlugins shuts plugins down in reverse order. Failures are logged
// and do not stop the remaining plugins.
func (d *Devsync) shutdownPlugins(plugins []Plugin) {
	shutdownCtx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			d.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			d.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (d *Devsync) Status() State {
	return convertState(d.lifecycle.State())
}

// Connected reports whether the tool connection is open.
func (d *Devsync) Connected() bool {
	b := d.current()
	return b != nil && b.Connected()
}

// HandleMessage queues a raw tool message as if the tool had sent it.
// Messages are applied in order by the background worker.
func (d *Devsync) HandleMessage(ctx context.Context, raw []byte) error {
	b := d.current()
	if b == nil {
		return domain.ErrNotRunning
	}
	return b.Enqueue(ctx, raw)
}

// Import queues session for replay into the tool. The first computed state
// is treated as the tool's initial state and is not re-sent.
func (d *Devsync) Import(ctx context.Context, session LiftedState) error {
	raw, err := domain.ImportCommand(session).Encode()
	if err != nil {
		return fmt.Errorf("encode import: %w", err)
	}
	return d.HandleMessage(ctx, raw)
}

func (d *Devsync) current() *app.Bridge {
	return d.bridge.Load()
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(action string) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{Action: action})
}

func (e *eventEmitterWrapper) OnSendError(action string, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{Action: action, Error: err})
}

func (e *eventEmitterWrapper) OnCommand(payloadType string, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnCommand(CommandEvent{Type: payloadType, Error: err})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
