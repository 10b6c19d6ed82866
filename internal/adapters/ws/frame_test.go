package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/devsync/internal/domain"
)

func TestEncodeFrame(t *testing.T) {
	state := domain.Snapshot{"count": 2}

	tests := []struct {
		name       string
		typ        string
		action     string
		wantAction *actionBody
		wantName   string
	}{
		{name: "init", typ: frameInit, wantName: "app"},
		{name: "action", typ: frameAction, action: "increment", wantAction: &actionBody{Type: "increment"}, wantName: "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeFrame(tt.typ, "id-1", "app", tt.action, state)
			require.NoError(t, err)

			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			require.Equal(t, tt.typ, f.Type)
			require.Equal(t, "id-1", f.InstanceID)
			require.Equal(t, tt.wantName, f.Name)
			require.Equal(t, tt.wantAction, f.Action)
			require.JSONEq(t, `{"count":2}`, f.Payload)
		})
	}
}

func TestEncodeFrame_UnencodableState(t *testing.T) {
	_, err := encodeFrame(frameAction, "id-1", "", "bad", domain.Snapshot{"ch": make(chan int)})
	require.Error(t, err)
}
