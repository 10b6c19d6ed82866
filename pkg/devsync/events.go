package devsync

// State is the lifecycle state of a Devsync instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent is emitted after a state change reached the tool.
type SendSuccessEvent struct {
	Action string
}

// SendErrorEvent is emitted when forwarding a state change failed.
type SendErrorEvent struct {
	Action string
	Error  error
}

// CommandEvent is emitted after a tool command was handled. Error is nil
// when the command was applied.
type CommandEvent struct {
	Type  string
	Error error
}

// EventHandler receives devsync events. Events are delivered synchronously
// on the goroutine that caused them; implementations should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSendSuccess(event SendSuccessEvent)
	OnSendError(event SendErrorEvent)
	OnCommand(event CommandEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}
func (BaseEventHandler) OnCommand(CommandEvent)         {}
