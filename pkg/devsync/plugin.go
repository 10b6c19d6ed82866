package devsync

import "context"

// Importer replays a recorded session into the debugging tool.
type Importer interface {
	Import(ctx context.Context, session LiftedState) error
}

// PluginConfig is handed to plugins on initialization.
type PluginConfig struct {
	Name       string
	InstanceID string
	Logger     Logger

	// Importer queues recorded sessions for the running instance. It
	// returns ErrNotRunning while the instance is not running.
	Importer Importer
}

// Plugin extends a Devsync instance. Plugins are initialized on Start in
// registration order and shut down on Stop in reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// BasePlugin implements Plugin with no-ops and a fixed name.
type BasePlugin struct {
	name string
}

// NewBasePlugin returns a BasePlugin called name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name returns the plugin name.
func (p BasePlugin) Name() string { return p.name }

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }
