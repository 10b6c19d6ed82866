package app

import (
	"sync"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/pkg/log"
)

// replayTracker holds the single replay in flight between the interpreter
// applying a state and the outbound sync consuming its debugging flag.
//
// Overlapping replays are last-write-wins: the newer replay replaces the
// older one, which is logged and counted but otherwise dropped.
type replayTracker struct {
	mu      sync.Mutex
	current *domain.Replay
	logger  log.Logger
}

func newReplayTracker(logger log.Logger) *replayTracker {
	return &replayTracker{logger: logger}
}

// Begin marks r as in flight and returns the replay it displaced, if any.
func (t *replayTracker) Begin(r *domain.Replay) *domain.Replay {
	t.mu.Lock()
	prev := t.current
	t.current = r
	t.mu.Unlock()

	if prev != nil {
		replayOverlaps.Inc()
		t.logger.Warn("replay started while another was in flight",
			log.String("replay", r.ID),
			log.String("displaced", prev.ID),
			log.String("displaced_action", prev.Action),
		)
	}
	return prev
}

// Complete clears and returns the replay in flight.
func (t *replayTracker) Complete() *domain.Replay {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.current
	t.current = nil
	return r
}

// CompleteIf clears the replay in flight only if it is r.
func (t *replayTracker) CompleteIf(r *domain.Replay) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != r {
		return false
	}
	t.current = nil
	return true
}

// Current returns the replay in flight.
func (t *replayTracker) Current() *domain.Replay {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
