// Package domain contains the core domain entities and value objects for devsync.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (transport, file system, logging)
// and contains only the synchronization vocabulary shared by the other layers.
//
// # Entities
//
//   - [Snapshot]: full application state at one instant, carrying the
//     reserved "__devTools" metadata object
//   - [HistoryEntry]: one committed store mutation (action, before, after)
//   - [Command]: a message received from the debugging tool
//   - [Replay]: the token identifying one tool-originated replay in flight
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Serializable with encoding/json in the tool's wire format
//   - Testable without mocks or external systems
package domain
