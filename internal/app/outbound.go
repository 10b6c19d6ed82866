package app

import (
	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// SyncEventEmitter is notified of outbound sends and inbound commands.
type SyncEventEmitter interface {
	OnSendSuccess(action string)
	OnSendError(action string, err error)
	OnCommand(payloadType string, err error)
}

// sender is the part of the connection manager the outbound sync uses.
type sender interface {
	Send(action string, state domain.Snapshot) (bool, error)
}

// OutboundSync forwards committed store changes to the debugging tool.
type OutboundSync struct {
	store   ports.Store
	conn    sender
	replays *replayTracker
	logger  log.Logger
	emitter SyncEventEmitter

	unsubscribe func()
}

// NewOutboundSync creates an outbound sync. It does nothing until Start.
func NewOutboundSync(store ports.Store, conn sender, replays *replayTracker, logger log.Logger, emitter SyncEventEmitter) *OutboundSync {
	return &OutboundSync{
		store:   store,
		conn:    conn,
		replays: replays,
		logger:  logger,
		emitter: emitter,
	}
}

// Start subscribes to the store's global change stream.
func (o *OutboundSync) Start() {
	if o.unsubscribe != nil {
		return
	}
	o.unsubscribe = o.store.SubscribeGlobal(o.OnStateChanged)
}

// Stop removes the subscription.
func (o *OutboundSync) Stop() {
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

// OnStateChanged handles one global state change.
func (o *OutboundSync) OnStateChanged(state domain.Snapshot) {
	// A replay from the tool: swallow it and clear the flag so it cannot
	// leak into the next snapshot.
	if state.ConsumeDebugging() {
		recordOutbound(outboundDebugging)
		if r := o.replays.Complete(); r != nil {
			o.logger.Debug("replay applied",
				log.String("replay", r.ID),
				log.String("action", r.Action),
			)
		}
		return
	}

	history := o.store.History()
	if len(history) == 0 {
		recordOutbound(outboundNoHistory)
		return
	}
	last := history[len(history)-1]

	if domain.IsJumpLabel(last.Action) {
		recordOutbound(outboundJumpEcho)
		return
	}

	// The tool does not carry the action label through its own flow, so it
	// is attached to the metadata of the copy that is sent.
	out := last.StateAfter.WithAction(last.Action)
	sent, err := o.conn.Send(last.Action, out)
	switch {
	case err != nil:
		recordOutbound(outboundError)
		o.logger.Warn("send to tool failed", log.String("action", last.Action), log.Err(err))
		if o.emitter != nil {
			o.emitter.OnSendError(last.Action, err)
		}
	case !sent:
		recordOutbound(outboundNoConnection)
	default:
		recordOutbound(outboundSent)
		o.logger.Debug("sent state to tool", log.String("action", last.Action))
		if o.emitter != nil {
			o.emitter.OnSendSuccess(last.Action)
		}
	}
}
