package store

import (
	"sort"
	"sync"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
)

// Store is an in-memory observable state store.
// It is safe for concurrent use. Stored maps are never mutated after commit;
// readers and subscribers get copies. Subscribers are called outside the
// lock, on the goroutine that triggered the change.
type Store struct {
	mu       sync.RWMutex
	state    domain.Snapshot
	history  []domain.HistoryEntry
	global   subscribers
	services map[string]*Service
	order    []string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		state:    domain.Snapshot{},
		services: make(map[string]*Service),
	}
}

// Register returns the feature service with the given name, creating it on
// first use.
func (s *Store) Register(name string) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.services[name]; ok {
		return svc
	}
	svc := &Service{name: name, store: s}
	s.services[name] = svc
	s.order = append(s.order, name)
	return svc
}

// Services returns all registered services in registration order.
func (s *Store) Services() []ports.StoreService {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.StoreService, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.services[name])
	}
	return out
}

// ServiceNames returns the names of registered services, sorted.
func (s *Store) ServiceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := append([]string(nil), s.order...)
	sort.Strings(names)
	return names
}

// State returns a copy of the current aggregate state.
func (s *Store) State() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// History returns a copy of the committed mutations in insertion order.
func (s *Store) History() []domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HistoryEntry(nil), s.history...)
}

// SetState merges state into the aggregate state and records the mutation.
// When broadcast is true the global change stream is notified.
func (s *Store) SetState(state domain.Snapshot, action string, broadcast bool) {
	s.commit(state, action)
	if broadcast {
		s.broadcast()
	}
}

// DispatchState notifies global subscribers of the current aggregate state
// when broadcast is true. The aggregate store has no subscribers of its own
// beyond the global stream.
func (s *Store) DispatchState(_ domain.Snapshot, broadcast bool) {
	if broadcast {
		s.broadcast()
	}
}

// SubscribeGlobal registers fn for every global state change.
func (s *Store) SubscribeGlobal(fn func(domain.Snapshot)) func() {
	return s.global.add(fn)
}

func (s *Store) commit(state domain.Snapshot, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state
	s.state = before.Merge(state.Clone())
	s.history = append(s.history, domain.HistoryEntry{
		Action:      action,
		StateBefore: before,
		StateAfter:  s.state,
	})
}

// broadcast notifies global subscribers with one shared copy of the state.
func (s *Store) broadcast() {
	s.global.notify(s.settle())
}

// settle copies the state for subscribers and drops the debugging flag from
// the stored state. The flag only lives on the copy handed out.
func (s *Store) settle() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state.Clone()
	if s.state.Debugging() {
		next := s.state.Clone()
		next.ConsumeDebugging()
		s.state = next
	}
	return out
}

var _ ports.Store = (*Store)(nil)
