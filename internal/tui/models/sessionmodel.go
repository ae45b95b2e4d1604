package models

import (
	"context"
	"sync"

	"github.com/toddleonhardt/go-tdlchar/internal/client"
	"github.com/toddleonhardt/go-tdlchar/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// SessionModel carries the shared state behind the session TUI: the daemon
// connection, the raw transcript, and the input mode.
type SessionModel struct {
	sess       *client.Session
	socketPath string

	open   bool
	events []components.EventMsg
	err    error
	ready  bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSessionModel(socketPath string) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		socketPath: socketPath,
		events:     make([]components.EventMsg, 0),
		inputMode:  InputModeNormal,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m *SessionModel) GetSession() *client.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

func (m *SessionModel) SetSession(sess *client.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
}

func (m *SessionModel) GetSocketPath() string {
	return m.socketPath
}

func (m *SessionModel) IsOpen() bool {
	return m.open
}

func (m *SessionModel) SetOpen(open bool) {
	m.open = open
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetEvents() []components.EventMsg {
	return m.events
}

func (m *SessionModel) AddEvent(msg components.EventMsg) {
	m.events = append(m.events, msg)
}

func (m *SessionModel) ClearEvents() {
	m.events = make([]components.EventMsg, 0)
}

func (m *SessionModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

func (m *SessionModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.sess != nil {
		m.sess.Close()
		m.sess = nil
	}
	m.mu.Unlock()
}
