// Package store provides an in-memory observable state store that devsync can
// synchronize with a debugging tool.
//
// The store keeps one aggregate state, an append-only history of every
// committed mutation and a global change stream. Feature services register
// with the store and commit partial state into the aggregate; each service
// also has its own subscribers.
//
// # Usage
//
//	s := store.New()
//	counter := s.Register("counter")
//
//	unsubscribe := s.SubscribeGlobal(func(state devsync.Snapshot) {
//	    fmt.Println(state["count"])
//	})
//	defer unsubscribe()
//
//	counter.SetState(devsync.Snapshot{"count": 1.0}, "increment", true)
//
// # Merge Semantics
//
// SetState merges the top-level keys of the given state into the aggregate
// state (a shallow merge). The committed value is copied, so later changes to
// the caller's map do not reach the store.
//
// # Snapshots
//
// State and every notification return copies of the aggregate state, so a
// snapshot may be changed or encoded on any goroutine. A global broadcast
// carries the transient "__devTools.debugging" flag on its copy and drops it
// from the stored state. History entries hold the state values committed at
// the time and must be treated as read-only.
package store
