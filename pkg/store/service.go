package store

import (
	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
)

// Service is a feature-scoped view of a Store. Commits go to the aggregate
// state; the service has its own subscribers.
type Service struct {
	name  string
	store *Store
	local subscribers
}

// Name returns the name the service was registered with.
func (s *Service) Name() string {
	return s.name
}

// State returns a copy of the aggregate state.
func (s *Service) State() domain.Snapshot {
	return s.store.State()
}

// SetState commits state to the store. When broadcast is true both the
// service's subscribers and the global stream are notified.
func (s *Service) SetState(state domain.Snapshot, action string, broadcast bool) {
	s.store.commit(state, action)
	if broadcast {
		s.DispatchState(state, true)
	}
}

// DispatchState notifies the service's subscribers, and the global stream
// when broadcastGlobal is true.
func (s *Service) DispatchState(_ domain.Snapshot, broadcastGlobal bool) {
	s.local.notify(s.store.State())
	if broadcastGlobal {
		s.store.broadcast()
	}
}

// Subscribe registers fn for changes dispatched by this service.
func (s *Service) Subscribe(fn func(domain.Snapshot)) func() {
	return s.local.add(fn)
}

var _ ports.StoreService = (*Service)(nil)
