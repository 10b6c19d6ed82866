package ports

import "context"

// NavigationSource reports application route changes. Browser back and
// forward must be reported exactly like programmatic navigation.
type NavigationSource interface {
	// CurrentPath returns the route the application is showing.
	CurrentPath() string

	// Subscribe registers fn for every route change.
	Subscribe(fn func(path string)) (unsubscribe func())
}

// RouteNavigator moves the application to path. The context carries the
// domain.Replay that requested the navigation.
type RouteNavigator interface {
	Navigate(ctx context.Context, path string) error
}

// RouteNavigatorFunc adapts a function to RouteNavigator.
type RouteNavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f(ctx, path).
func (f RouteNavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// HistoryPusher is a client router history (push-only).
type HistoryPusher interface {
	Push(path string)
}
