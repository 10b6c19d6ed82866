package domain

import (
	"encoding/json"
	"fmt"
)

// Command types understood by the interpreter.
const (
	TypeDispatch     = "DISPATCH"
	TypeJumpToState  = "JUMP_TO_STATE"
	TypeJumpToAction = "JUMP_TO_ACTION"
	TypeImportState  = "IMPORT_STATE"
)

// Command is a message received from the debugging tool.
//
//	{"type":"DISPATCH","payload":{"type":"JUMP_TO_STATE"},"state":"{...}"}
type Command struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`

	// State is the JSON-encoded Snapshot targeted by a jump.
	State string `json:"state,omitempty"`
}

// Payload carries the command-specific portion of a Command.
type Payload struct {
	Type            string       `json:"type"`
	NextLiftedState *LiftedState `json:"nextLiftedState,omitempty"`
}

// LiftedState is the tool's recorded timeline. It is also the document
// format of a recorded session file.
type LiftedState struct {
	ComputedStates []ComputedState `json:"computedStates"`
}

// ComputedState is one entry of a recorded timeline.
type ComputedState struct {
	State Snapshot `json:"state"`
}

// DecodeCommand parses a raw tool message.
func DecodeCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	return cmd, nil
}

// DecodeState parses the JSON-encoded state of a jump command. It returns
// ErrMalformedCommand when the text is not a JSON object and ErrNotSyncState
// when the object has no __devTools metadata.
func DecodeState(text string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("%w: state: %v", ErrMalformedCommand, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: state is null", ErrMalformedCommand)
	}
	if !s.HasMeta() {
		return nil, ErrNotSyncState
	}
	return s, nil
}

// ImportCommand builds the IMPORT_STATE command replaying lifted.
func ImportCommand(lifted LiftedState) Command {
	return Command{
		Type: TypeDispatch,
		Payload: Payload{
			Type:            TypeImportState,
			NextLiftedState: &lifted,
		},
	}
}

// Encode returns the wire form of c.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}
