package ws

import (
	"encoding/json"
	"fmt"

	"github.com/bft-labs/devsync/internal/domain"
)

// Frame types written to the tool.
const (
	frameInit   = "INIT"
	frameAction = "ACTION"
)

// frame is one message written to the tool. State travels as a JSON string,
// the same encoding the tool uses for the state of its own commands.
type frame struct {
	Type       string       `json:"type"`
	InstanceID string       `json:"instanceId"`
	Name       string       `json:"name,omitempty"`
	Action     *actionBody  `json:"action,omitempty"`
	Payload    string       `json:"payload"`
}

type actionBody struct {
	Type string `json:"type"`
}

func encodeFrame(typ, instanceID, name, action string, state domain.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	f := frame{
		Type:       typ,
		InstanceID: instanceID,
		Name:       name,
		Payload:    string(payload),
	}
	if action != "" {
		f.Action = &actionBody{Type: action}
	}
	return json.Marshal(f)
}
