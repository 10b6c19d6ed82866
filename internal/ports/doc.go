// Package ports defines the interfaces (ports) that connect the synchronization
// core to its external collaborators.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// core needs from the state store, the debugging tool and the host
// environment without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Store], [StoreService]: the observable state store and its feature services
//   - [Extension], [Connection]: the debugging tool and one live link to it
//   - [NavigationSource]: application route changes (push, replace, back, forward)
//   - [RouteNavigator], [HistoryPusher]: ways to move the application to a route
//   - [Environment]: the host UI framework integration
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters, pkg/store, pkg/navigation) implement them.
package ports
