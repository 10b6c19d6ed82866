package domain

import "errors"

// Domain errors represent error conditions in the devsync domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running bridge.
	ErrAlreadyRunning = errors.New("devsync: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped bridge.
	ErrNotRunning = errors.New("devsync: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("devsync: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("devsync: invalid configuration")

	// ErrToolAbsent is returned when no debugging tool could be reached.
	// Callers treat it as "synchronization disabled", never as fatal.
	ErrToolAbsent = errors.New("devsync: debugging tool absent")

	// ErrMalformedCommand is returned when an inbound message cannot be decoded.
	ErrMalformedCommand = errors.New("devsync: malformed command")

	// ErrNotSyncState is returned when a decoded state carries no __devTools metadata.
	ErrNotSyncState = errors.New("devsync: state has no __devTools metadata")

	// ErrNoNavigator is returned when a route replay has no navigator to use.
	ErrNoNavigator = errors.New("devsync: no navigator available")
)
