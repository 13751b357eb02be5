package dialog

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs an in-memory Store implementation for tests and
// development. Sessions do not survive a restart; production deployments use
// the Redis store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]*Session)}
}

// Load returns a deep copy of the user's session, or a fresh empty session.
func (m *memoryStore) Load(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.Clone(), nil
	}
	return NewSession(), nil
}

// Save stores a deep copy of the session for the user.
func (m *memoryStore) Save(_ context.Context, userID int64, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = sess.Clone()
	return nil
}

// Delete removes the user's session entirely.
func (m *memoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
