package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// importer is the part of the connection manager used by IMPORT_STATE.
type importer interface {
	sender
	Reconnect(ctx context.Context) error
}

// router is the part of the navigation correlator used by jumps.
type router interface {
	Replay(ctx context.Context, path string) error
}

// Interpreter applies commands received from the debugging tool.
// Handle is not safe for concurrent use; the bridge calls it from a single
// worker goroutine.
type Interpreter struct {
	store   ports.Store
	env     ports.Environment
	conn    importer
	nav     router
	replays *replayTracker
	logger  log.Logger
	emitter SyncEventEmitter
}

// NewInterpreter creates an interpreter. env defaults to running callbacks
// inline.
func NewInterpreter(
	store ports.Store,
	env ports.Environment,
	conn importer,
	nav router,
	replays *replayTracker,
	logger log.Logger,
	emitter SyncEventEmitter,
) *Interpreter {
	if env == nil {
		env = ports.DirectEnvironment{}
	}
	return &Interpreter{
		store:   store,
		env:     env,
		conn:    conn,
		nav:     nav,
		replays: replays,
		logger:  logger,
		emitter: emitter,
	}
}

// Handle decodes and applies one raw tool message. Commands that cannot be
// applied are logged and reported through the returned error; they never
// leave the store partially updated.
func (i *Interpreter) Handle(ctx context.Context, raw []byte) error {
	cmd, err := domain.DecodeCommand(raw)
	if err != nil {
		recordRejected(rejectMalformed)
		i.logger.Warn("ignoring malformed tool message", log.Err(err))
		i.notify("", err)
		return err
	}

	if cmd.Type != domain.TypeDispatch {
		recordRejected(rejectUnsupported)
		i.logger.Debug("ignoring tool message", log.String("type", cmd.Type))
		return nil
	}

	switch cmd.Payload.Type {
	case domain.TypeJumpToState, domain.TypeJumpToAction:
		recordCommand(cmd.Payload.Type)
		err = i.jump(ctx, cmd)
	case domain.TypeImportState:
		recordCommand(cmd.Payload.Type)
		err = i.importState(ctx, cmd)
	default:
		recordRejected(rejectUnsupported)
		i.logger.Debug("ignoring dispatch", log.String("payload_type", cmd.Payload.Type))
		return nil
	}

	i.notify(cmd.Payload.Type, err)
	return err
}

func (i *Interpreter) jump(ctx context.Context, cmd domain.Command) error {
	state, err := domain.DecodeState(cmd.State)
	if err != nil {
		if errors.Is(err, domain.ErrNotSyncState) {
			recordRejected(rejectNotSyncState)
			i.logger.Debug("ignoring jump to state without sync metadata")
		} else {
			recordRejected(rejectMalformed)
			i.logger.Warn("ignoring jump with malformed state", log.Err(err))
		}
		return err
	}

	state.MarkDebugging()
	label := domain.JumpLabel(state.Action())
	path, hasPath := state.RouterPath()

	r := domain.NewReplay(state.Action(), path)
	i.replays.Begin(r)
	ctx = domain.ContextWithReplay(ctx, r)

	i.logger.Debug("applying tool jump",
		log.String("replay", r.ID),
		log.String("type", cmd.Payload.Type),
		log.String("action", r.Action),
	)

	if hasPath {
		if err := i.nav.Replay(ctx, path); err != nil {
			if errors.Is(err, domain.ErrNoNavigator) {
				i.logger.Debug("no navigator for replayed route", log.String("path", path))
			} else {
				i.logger.Warn("route replay failed", log.String("path", path), log.Err(err))
			}
		}
	}

	i.apply(state, label)

	// Nothing observed the broadcast (no global subscriber consumed the
	// flag), so finish the replay here to keep the flag from leaking.
	if i.replays.CompleteIf(r) {
		state.ConsumeDebugging()
	}
	return nil
}

// apply sets state on every feature service silently, then broadcasts the
// aggregate once, all inside the host environment's isolated context.
func (i *Interpreter) apply(state domain.Snapshot, label string) {
	i.env.RunIsolated(func() {
		services := i.store.Services()
		for _, svc := range services {
			svc.SetState(state, label, false)
			svc.DispatchState(state, false)
		}
		if len(services) == 0 {
			i.store.SetState(state, label, false)
		}
		i.store.DispatchState(state, true)
	})
}

func (i *Interpreter) importState(ctx context.Context, cmd domain.Command) error {
	lifted := cmd.Payload.NextLiftedState
	if lifted == nil || len(lifted.ComputedStates) == 0 {
		recordRejected(rejectPrecondition)
		i.logger.Debug("ignoring import without computed states")
		return fmt.Errorf("%w: import has no computed states", domain.ErrMalformedCommand)
	}

	if err := i.conn.Reconnect(ctx); err != nil {
		i.logger.Warn("reconnect for import failed", log.Err(err))
		return fmt.Errorf("import: %w", err)
	}

	// The first computed state is the tool's initial state, which the new
	// connection already announced on Init.
	sent, skipped := 0, 0
	for _, entry := range lifted.ComputedStates[1:] {
		if !entry.State.HasMeta() {
			skipped++
			continue
		}
		action := entry.State.Action()
		ok, err := i.conn.Send(action, entry.State)
		if err != nil {
			return fmt.Errorf("import %q: %w", action, err)
		}
		if ok {
			sent++
		}
	}

	i.logger.Info("imported session",
		log.Int("sent", sent),
		log.Int("skipped", skipped),
	)
	return nil
}

func (i *Interpreter) notify(payloadType string, err error) {
	if i.emitter != nil {
		i.emitter.OnCommand(payloadType, err)
	}
}
