package devsync

import (
	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// Re-export core types so embedders need only this package.
type (
	// Snapshot is the full serializable application state.
	Snapshot = domain.Snapshot

	// HistoryEntry records one committed store mutation.
	HistoryEntry = domain.HistoryEntry

	// LiftedState is a recorded timeline, as exported by the tool.
	LiftedState = domain.LiftedState

	// ComputedState is one entry of a LiftedState.
	ComputedState = domain.ComputedState

	// Replay identifies a tool replay in flight. Route navigators find it
	// in their context with ReplayFromContext.
	Replay = domain.Replay

	Store              = ports.Store
	StoreService       = ports.StoreService
	Extension          = ports.Extension
	Connection         = ports.Connection
	ConnectConfig      = ports.ConnectConfig
	NavigationSource   = ports.NavigationSource
	RouteNavigator     = ports.RouteNavigator
	RouteNavigatorFunc = ports.RouteNavigatorFunc
	HistoryPusher      = ports.HistoryPusher
	Environment        = ports.Environment
	DirectEnvironment  = ports.DirectEnvironment

	// Logger is the structured logger used throughout devsync.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field
)

// Errors returned by devsync.
var (
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
	ErrShutdownTimeout  = domain.ErrShutdownTimeout
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrToolAbsent       = domain.ErrToolAbsent
	ErrMalformedCommand = domain.ErrMalformedCommand
	ErrNotSyncState     = domain.ErrNotSyncState
	ErrNoNavigator      = domain.ErrNoNavigator
)

// Action labels and metadata keys shared with the tool.
const (
	MetaKey               = domain.MetaKey
	ActionRouteNavigation = domain.ActionRouteNavigation
	JumpMarker            = domain.JumpMarker
)

// ReplayFromContext returns the replay that requested a navigation.
var ReplayFromContext = domain.ReplayFromContext
