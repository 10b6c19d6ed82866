// Package devsync keeps an application's state store in sync with a
// time-travel debugging tool.
//
// Every committed mutation of the store is forwarded to the tool as an
// action on its timeline. When the developer jumps to an earlier point in the
// tool, the recorded snapshot is applied back into the store without being
// echoed to the tool again, and the route recorded with it is restored.
//
// # Basic Usage
//
//	s := store.New()
//	s.Register("counter")
//
//	d, err := devsync.New(s, devsync.Config{Name: "my-app"},
//	    devsync.WithToolURL("ws://127.0.0.1:8000/devtools"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop()
//
// Without an extension the tool is treated as absent and synchronization is
// a no-op; the store keeps working as usual.
//
// # Routes
//
// Route changes are recorded as ROUTE_NAVIGATION actions when a
// [NavigationSource] is configured. To restore routes on jumps, provide a
// navigator. The first available one is used:
//
//  1. [WithCustomRouteNavigator]
//  2. an [Environment] passed to [WithEnvironment] that implements [RouteNavigator]
//  3. a router history passed to [WithRouterHistory]
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for no-op defaults)
// and pass it via [WithEventHandler]. Events are called synchronously from the
// goroutine that produced them and should return quickly.
//
// # Lifecycle States
//
// An instance is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Devsync.Status] to query it.
//
// # Plugins
//
// Plugins are initialized on Start in registration order and shut down on
// Stop in reverse order. See plugins/sessionwatch for a plugin that replays
// exported sessions into the tool.
package devsync
