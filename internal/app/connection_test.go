package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/devsync/internal/domain"
)

func newTestManager(ext *fakeExtension, attempts int, state func() domain.Snapshot) *ConnectionManager {
	cfg := ConnectionConfig{
		Name:           "test",
		InstanceID:     "test-1",
		DialAttempts:   attempts,
		BackoffInitial: time.Millisecond,
		BackoffMax:     2 * time.Millisecond,
	}
	if ext == nil {
		return NewConnectionManager(nil, cfg, state, func([]byte) {}, &mockLogger{})
	}
	return NewConnectionManager(ext, cfg, state, func([]byte) {}, &mockLogger{})
}

func TestConnectionManager_ConnectRetries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		attempts     int
		wantErr      error
		wantConnects int
	}{
		{"first try", 0, 3, nil, 1},
		{"after retries", 2, 3, nil, 3},
		{"gives up", 5, 2, domain.ErrToolAbsent, 2},
		{"single attempt", 1, 0, domain.ErrToolAbsent, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &fakeExtension{failures: tt.failures}
			m := newTestManager(ext, tt.attempts, nil)

			_, err := m.Connect(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Connect() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Connect() error = %v, want %v", err, tt.wantErr)
			}
			if ext.connects != tt.wantConnects {
				t.Errorf("connect attempts = %d, want %d", ext.connects, tt.wantConnects)
			}
			if m.Connected() != (tt.wantErr == nil) {
				t.Errorf("Connected() = %v", m.Connected())
			}
		})
	}
}

func TestConnectionManager_NilExtension(t *testing.T) {
	m := newTestManager(nil, 3, nil)

	if m.ToolPresent() {
		t.Error("ToolPresent() = true without an extension")
	}
	if _, err := m.Connect(context.Background()); !errors.Is(err, domain.ErrToolAbsent) {
		t.Errorf("Connect() error = %v, want ErrToolAbsent", err)
	}
	sent, err := m.Send("a", domain.Snapshot{})
	if sent || err != nil {
		t.Errorf("Send() = %v, %v, want false, nil", sent, err)
	}
	m.Disconnect()
}

func TestConnectionManager_InitAndSubscribe(t *testing.T) {
	ext := &fakeExtension{}
	var delivered [][]byte
	m := NewConnectionManager(ext, ConnectionConfig{Name: "app"},
		func() domain.Snapshot { return domain.Snapshot{"count": 3} },
		func(raw []byte) { delivered = append(delivered, raw) },
		&mockLogger{},
	)

	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn := ext.Last()
	if conn.inits != 1 || conn.initial["count"] != 3 {
		t.Errorf("Init called %d times with %v", conn.inits, conn.initial)
	}

	conn.Emit([]byte(`{"type":"START"}`))
	if len(delivered) != 1 {
		t.Errorf("delivered %d messages, want 1", len(delivered))
	}

	if _, err := m.Connect(context.Background()); !errors.Is(err, errAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want errAlreadyConnected", err)
	}

	m.Disconnect()
	if !conn.closed {
		t.Error("Disconnect did not unsubscribe")
	}
	if ext.disconnects != 1 {
		t.Errorf("extension disconnects = %d, want 1", ext.disconnects)
	}
	conn.Emit([]byte(`{}`))
	if len(delivered) != 1 {
		t.Error("message delivered after Disconnect")
	}
}

func TestConnectionManager_SendErrors(t *testing.T) {
	ext := &fakeExtension{}
	m := newTestManager(ext, 1, nil)
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	ext.Last().sendErr = errors.New("broken pipe")

	sent, err := m.Send("a", domain.Snapshot{})
	if sent || err == nil {
		t.Errorf("Send() = %v, %v, want false and an error", sent, err)
	}
}

func TestConnectionManager_ReconnectDuringSends(t *testing.T) {
	ext := &fakeExtension{}
	m := newTestManager(ext, 1, nil)
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	const sends = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < sends; i++ {
			if _, err := m.Send("tick", domain.Snapshot{}); err != nil {
				t.Errorf("Send() error = %v", err)
			}
		}
	}()
	for i := 0; i < 10; i++ {
		if err := m.Reconnect(context.Background()); err != nil {
			t.Fatalf("Reconnect() error = %v", err)
		}
	}
	wg.Wait()

	// Every send landed on exactly one connection.
	total := 0
	for _, c := range ext.conns {
		total += len(c.Sent())
	}
	if total != sends {
		t.Errorf("delivered %d sends across connections, want %d", total, sends)
	}
	if ext.connects != 11 || ext.disconnects != 10 {
		t.Errorf("connects=%d disconnects=%d, want 11 and 10", ext.connects, ext.disconnects)
	}
}
