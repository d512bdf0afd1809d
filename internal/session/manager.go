package session

import (
	"sync"

	"github.com/google/uuid"
)

// Manager hands out isolated sessions keyed by id. Sessions never share
// an index or history.
type Manager struct {
	mu       sync.Mutex
	pipe     Pipeline
	sessions map[string]*Session
}

func NewManager(pipe Pipeline) *Manager {
	return &Manager{pipe: pipe, sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = New(id, m.pipe)
		m.sessions[id] = s
	}
	return s
}

// NewID mints a fresh session identifier.
func (m *Manager) NewID() string {
	return uuid.NewString()
}
