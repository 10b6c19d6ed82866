package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
)

// fakeTool is a websocket server standing in for the debugging tool.
type fakeTool struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	frames []frame
	peers  []*websocket.Conn
}

func newFakeTool(t *testing.T) *fakeTool {
	t.Helper()
	ft := &fakeTool{}
	ft.server = httptest.NewServer(http.HandlerFunc(ft.handle))
	t.Cleanup(ft.server.Close)
	return ft
}

func (ft *fakeTool) URL() string {
	return "ws" + strings.TrimPrefix(ft.server.URL, "http")
}

func (ft *fakeTool) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := ft.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ft.mu.Lock()
	ft.peers = append(ft.peers, conn)
	ft.mu.Unlock()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		ft.mu.Lock()
		ft.frames = append(ft.frames, f)
		ft.mu.Unlock()
	}
}

func (ft *fakeTool) Frames() []frame {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return append([]frame(nil), ft.frames...)
}

func (ft *fakeTool) Broadcast(t *testing.T, msg string) {
	t.Helper()
	ft.mu.Lock()
	defer ft.mu.Unlock()
	for _, p := range ft.peers {
		require.NoError(t, p.WriteMessage(websocket.TextMessage, []byte(msg)))
	}
}

func TestExtension_InitAndSend(t *testing.T) {
	tool := newFakeTool(t)
	ext := NewExtension(tool.URL())
	defer ext.Disconnect()

	cfg := ports.ConnectConfig{Name: "shop", InstanceID: "shop-1"}
	conn, err := ext.Connect(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, conn.Init(cfg, domain.Snapshot{"count": 0}))
	require.NoError(t, conn.Send("increment", domain.Snapshot{"count": 1}))

	require.Eventually(t, func() bool {
		return len(tool.Frames()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	frames := tool.Frames()
	require.Equal(t, frameInit, frames[0].Type)
	require.Equal(t, "shop", frames[0].Name)
	require.Equal(t, "shop-1", frames[0].InstanceID)
	require.JSONEq(t, `{"count":0}`, frames[0].Payload)

	require.Equal(t, frameAction, frames[1].Type)
	require.NotNil(t, frames[1].Action)
	require.Equal(t, "increment", frames[1].Action.Type)
	require.JSONEq(t, `{"count":1}`, frames[1].Payload)
}

func TestExtension_DeliversToolMessages(t *testing.T) {
	tool := newFakeTool(t)
	ext := NewExtension(tool.URL())
	defer ext.Disconnect()

	conn, err := ext.Connect(context.Background(), ports.ConnectConfig{})
	require.NoError(t, err)
	require.NotEmpty(t, conn.(*Connection).cfg.InstanceID)

	received := make(chan []byte, 1)
	conn.Subscribe(func(raw []byte) { received <- raw })

	require.Eventually(t, func() bool {
		tool.mu.Lock()
		defer tool.mu.Unlock()
		return len(tool.peers) == 1
	}, 2*time.Second, 10*time.Millisecond)

	msg := `{"type":"DISPATCH","payload":{"type":"JUMP_TO_STATE"},"state":"{}"}`
	tool.Broadcast(t, msg)

	select {
	case raw := <-received:
		require.JSONEq(t, msg, string(raw))
	case <-time.After(2 * time.Second):
		t.Fatal("tool message not delivered")
	}
}

func TestExtension_DisconnectClosesConnections(t *testing.T) {
	tool := newFakeTool(t)
	ext := NewExtension(tool.URL())

	conn, err := ext.Connect(context.Background(), ports.ConnectConfig{InstanceID: "a"})
	require.NoError(t, err)

	require.NoError(t, ext.Disconnect())

	select {
	case <-conn.(*Connection).done:
	case <-time.After(time.Second):
		t.Fatal("connection not closed by Disconnect")
	}
	require.ErrorIs(t, conn.Send("late", domain.Snapshot{}), ErrClosed)
}

func TestExtension_DialFailure(t *testing.T) {
	ext := NewExtension("ws://127.0.0.1:1/devtools", WithHandshakeTimeout(200*time.Millisecond))

	_, err := ext.Connect(context.Background(), ports.ConnectConfig{})
	require.Error(t, err)
}
