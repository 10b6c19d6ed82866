package ports

import (
	"context"

	"github.com/bft-labs/devsync/internal/domain"
)

// ConnectConfig is passed to the tool when a connection is opened.
type ConnectConfig struct {
	// Name labels this application instance in the tool.
	Name string

	// InstanceID identifies this bridge across reconnects.
	InstanceID string
}

// Extension is the debugging tool as seen from the application.
// A nil Extension means the tool is absent.
type Extension interface {
	// Connect opens a new connection to the tool.
	Connect(ctx context.Context, cfg ConnectConfig) (Connection, error)

	// Disconnect closes every connection opened by Connect.
	Disconnect() error
}

// Connection is one live link to the tool.
type Connection interface {
	// Init announces this instance and its initial state to the tool.
	Init(cfg ConnectConfig, state domain.Snapshot) error

	// Send records action and its resulting state on the tool's timeline.
	Send(action string, state domain.Snapshot) error

	// Subscribe delivers every raw message emitted by the tool to fn.
	Subscribe(fn func(raw []byte))

	// Unsubscribe stops message delivery.
	Unsubscribe()
}
