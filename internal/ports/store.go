package ports

import "github.com/bft-labs/devsync/internal/domain"

// StoreService is one independently registered, feature-scoped store.
type StoreService interface {
	// SetState commits state under the action label. When broadcast is false
	// no subscriber is notified.
	SetState(state domain.Snapshot, action string, broadcast bool)

	// DispatchState notifies the service's own subscribers. The global change
	// stream is notified only when broadcastGlobal is true.
	DispatchState(state domain.Snapshot, broadcastGlobal bool)
}

// Store is the aggregate observable store devsync synchronizes.
type Store interface {
	StoreService

	// State returns the current aggregate state.
	State() domain.Snapshot

	// History returns the committed mutations in insertion order.
	History() []domain.HistoryEntry

	// SubscribeGlobal registers fn for every global state change.
	// The returned function removes the subscription.
	SubscribeGlobal(fn func(domain.Snapshot)) (unsubscribe func())

	// Services returns all registered feature services.
	Services() []StoreService
}
