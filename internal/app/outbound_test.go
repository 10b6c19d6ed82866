package app

import (
	"errors"
	"testing"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/pkg/store"
)

// recordingSender is a sender without a connection manager.
type recordingSender struct {
	sent []sentAction
	err  error
	down bool
}

func (s *recordingSender) Send(action string, state domain.Snapshot) (bool, error) {
	if s.down {
		return false, nil
	}
	if s.err != nil {
		return false, s.err
	}
	s.sent = append(s.sent, sentAction{action: action, state: state})
	return true, nil
}

func TestOutboundSync_OnStateChanged(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		state     domain.Snapshot
		down      bool
		wantSends int
	}{
		{"user action", "increment", domain.Snapshot{"n": 1}, false, 1},
		{"jump label", domain.JumpLabel("increment"), domain.Snapshot{"n": 1}, false, 0},
		{"debugging", "increment", domain.Snapshot{domain.MetaKey: map[string]any{"debugging": true}}, false, 0},
		{"no connection", "increment", domain.Snapshot{"n": 1}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New()
			snd := &recordingSender{down: tt.down}
			out := NewOutboundSync(st, snd, newReplayTracker(&mockLogger{}), &mockLogger{}, nil)
			out.Start()
			defer out.Stop()

			st.SetState(tt.state, tt.action, true)

			if len(snd.sent) != tt.wantSends {
				t.Fatalf("sends = %d, want %d", len(snd.sent), tt.wantSends)
			}
			if st.State().Debugging() {
				t.Error("debugging flag survived the change")
			}
		})
	}
}

func TestOutboundSync_EmptyHistory(t *testing.T) {
	st := store.New()
	snd := &recordingSender{}
	out := NewOutboundSync(st, snd, newReplayTracker(&mockLogger{}), &mockLogger{}, nil)

	out.OnStateChanged(domain.Snapshot{"n": 1})
	if len(snd.sent) != 0 {
		t.Error("sent without history")
	}
}

func TestOutboundSync_DoesNotMutateStore(t *testing.T) {
	st := store.New()
	st.SetState(domain.Snapshot{domain.MetaKey: map[string]any{"router": map[string]any{"path": "/"}}}, "seed", false)

	snd := &recordingSender{}
	out := NewOutboundSync(st, snd, newReplayTracker(&mockLogger{}), &mockLogger{}, nil)
	out.Start()
	defer out.Stop()

	st.SetState(domain.Snapshot{"n": 1}, "increment", true)

	if got := snd.sent[0].state.Action(); got != "increment" {
		t.Errorf("sent action tag = %q, want increment", got)
	}
	if path, _ := snd.sent[0].state.RouterPath(); path != "/" {
		t.Errorf("sent router path = %q, want /", path)
	}
	if got := st.State().Action(); got != "" {
		t.Errorf("store metadata action = %q, want it untouched", got)
	}
}

func TestOutboundSync_SendErrorIsReported(t *testing.T) {
	st := store.New()
	emitter := &mockSyncEmitter{}
	snd := &recordingSender{err: errors.New("closed")}
	logger := &mockLogger{}
	out := NewOutboundSync(st, snd, newReplayTracker(logger), logger, emitter)
	out.Start()
	defer out.Stop()

	st.SetState(domain.Snapshot{"n": 1}, "increment", true)

	if len(emitter.failures) != 1 || emitter.failures[0] != "increment" {
		t.Errorf("send failures = %v, want [increment]", emitter.failures)
	}
	if len(logger.Warnings()) != 1 {
		t.Errorf("warnings = %d, want 1", len(logger.Warnings()))
	}
}
