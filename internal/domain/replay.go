package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Replay identifies one tool-originated state replay while it is in flight.
// It replaces process-wide suppression flags: the interpreter creates one per
// jump command and passes it down the call chain.
type Replay struct {
	ID        string
	Action    string
	Path      string
	StartedAt time.Time
}

// NewReplay creates a replay token for the given action label and route.
func NewReplay(action, path string) *Replay {
	return &Replay{
		ID:        uuid.NewString(),
		Action:    action,
		Path:      path,
		StartedAt: time.Now(),
	}
}

type replayKey struct{}

// ContextWithReplay returns a context carrying r.
func ContextWithReplay(ctx context.Context, r *Replay) context.Context {
	return context.WithValue(ctx, replayKey{}, r)
}

// ReplayFromContext returns the replay carried by ctx, if any.
func ReplayFromContext(ctx context.Context) (*Replay, bool) {
	r, ok := ctx.Value(replayKey{}).(*Replay)
	return r, ok && r != nil
}
