package app

import (
	"context"
	"errors"
	"sync"

	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/log"
)

// mockLogger implements log.Logger and records warnings.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*mockLogger) Debug(msg string, fields ...log.Field) {}
func (*mockLogger) Info(msg string, fields ...log.Field)  {}
func (*mockLogger) Error(msg string, fields ...log.Field) {}

func (m *mockLogger) Warn(msg string, fields ...log.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warns...)
}

// sentAction is one Send observed by a fake connection.
type sentAction struct {
	action string
	state  domain.Snapshot
}

// fakeConnection records everything sent to the tool.
type fakeConnection struct {
	mu      sync.Mutex
	inits   int
	initial domain.Snapshot
	sent    []sentAction
	handler func(raw []byte)
	sendErr error
	closed  bool
}

func (c *fakeConnection) Init(_ ports.ConnectConfig, state domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inits++
	c.initial = state
	return nil
}

func (c *fakeConnection) Send(action string, state domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentAction{action: action, state: state.Clone()})
	return nil
}

func (c *fakeConnection) Subscribe(fn func(raw []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

func (c *fakeConnection) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
	c.closed = true
}

// Emit simulates a message from the tool.
func (c *fakeConnection) Emit(raw []byte) {
	c.mu.Lock()
	fn := c.handler
	c.mu.Unlock()
	if fn != nil {
		fn(raw)
	}
}

func (c *fakeConnection) Sent() []sentAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentAction(nil), c.sent...)
}

// fakeExtension hands out a new fakeConnection per Connect.
type fakeExtension struct {
	mu          sync.Mutex
	failures    int
	connects    int
	disconnects int
	conns       []*fakeConnection
}

func (e *fakeExtension) Connect(_ context.Context, _ ports.ConnectConfig) (ports.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connects++
	if e.failures > 0 {
		e.failures--
		return nil, errors.New("tool unreachable")
	}
	c := &fakeConnection{}
	e.conns = append(e.conns, c)
	return c, nil
}

func (e *fakeExtension) Disconnect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disconnects++
	return nil
}

// Last returns the most recently opened connection.
func (e *fakeExtension) Last() *fakeConnection {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.conns) == 0 {
		return nil
	}
	return e.conns[len(e.conns)-1]
}

// fakeNavigator records the paths it was asked to navigate to and
// optionally forwards them to a router.
type fakeNavigator struct {
	mu      sync.Mutex
	paths   []string
	replays []*domain.Replay
	push    func(path string)
	err     error
}

func (n *fakeNavigator) Navigate(ctx context.Context, path string) error {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	r, _ := domain.ReplayFromContext(ctx)
	n.replays = append(n.replays, r)
	push, err := n.push, n.err
	n.mu.Unlock()

	if err != nil {
		return err
	}
	if push != nil {
		push(path)
	}
	return nil
}

func (n *fakeNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// navigatingEnvironment is an environment that can also route.
type navigatingEnvironment struct {
	fakeNavigator
	isolated int
}

func (e *navigatingEnvironment) RunIsolated(fn func()) {
	e.isolated++
	fn()
}

// countingEnvironment counts isolated runs and has no router.
type countingEnvironment struct {
	runs int
}

func (e *countingEnvironment) RunIsolated(fn func()) {
	e.runs++
	fn()
}

// pushRecorder is a HistoryPusher.
type pushRecorder struct {
	paths []string
}

func (p *pushRecorder) Push(path string) {
	p.paths = append(p.paths, path)
}

// mockSyncEmitter records sync events.
type mockSyncEmitter struct {
	mu        sync.Mutex
	successes []string
	failures  []string
	commands  []string
	cmdErrs   []error
}

func (m *mockSyncEmitter) OnSendSuccess(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes = append(m.successes, action)
}

func (m *mockSyncEmitter) OnSendError(action string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, action)
}

func (m *mockSyncEmitter) OnCommand(payloadType string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, payloadType)
	m.cmdErrs = append(m.cmdErrs, err)
}

// staticSource is a NavigationSource whose path only changes when set.
type staticSource struct {
	mu   sync.Mutex
	path string
	fns  []func(string)
}

func (s *staticSource) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *staticSource) Subscribe(fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return func() {}
}

func (s *staticSource) Set(path string) {
	s.mu.Lock()
	s.path = path
	fns := append(([]func(string))(nil), s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(path)
	}
}
