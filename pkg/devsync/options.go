package devsync

// Option configures optional behavior of Devsync.
type Option func(*options)

// options holds the optional configuration for a Devsync instance.
type options struct {
	logger          Logger
	extension       Extension
	toolURL         string
	environment     Environment
	source          NavigationSource
	customNavigator RouteNavigator
	routerHistory   HistoryPusher
	eventHandler    EventHandler
	plugins         []Plugin
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExtension sets the debugging tool. Without one the tool is absent and
// synchronization is a no-op.
func WithExtension(ext Extension) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithToolURL connects to a tool listening on a websocket endpoint
// (ws:// or wss://). It is ignored when WithExtension is also given.
func WithToolURL(url string) Option {
	return func(o *options) {
		o.toolURL = url
	}
}

// WithEnvironment sets the host UI environment. Replayed state is applied
// inside its isolated context. An environment that also implements
// RouteNavigator is used to restore routes when no custom navigator is set.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.environment = env
	}
}

// WithNavigationSource enables route correlation.
func WithNavigationSource(src NavigationSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithCustomRouteNavigator sets the navigator used to restore routes.
// It takes priority over every other navigator.
func WithCustomRouteNavigator(nav RouteNavigator) Option {
	return func(o *options) {
		o.customNavigator = nav
	}
}

// WithRouterHistory sets the router history used to restore routes when no
// other navigator is available.
func WithRouterHistory(h HistoryPusher) Option {
	return func(o *options) {
		o.routerHistory = h
	}
}

// WithEventHandler sets a handler for devsync events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when Devsync starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
