package session

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe in-memory session store with the same
// contract as [Store]. Records are copied on the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Save adds or replaces a session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.SessionID == "" {
		return errors.New("session id cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s.Clone()
	return nil
}

// Get returns a copy of the session, or (nil, nil) when absent.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[sessionID].Clone(), nil
}

// Delete removes a session. Missing sessions are ignored.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Update replaces an existing session and fails with [ErrSessionMissing]
// when it is absent.
func (m *MemoryStore) Update(_ context.Context, s *Session) (*Session, error) {
	if s == nil || s.SessionID == "" {
		return nil, errors.New("session id cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.SessionID]; !ok {
		return nil, ErrSessionMissing
	}
	m.sessions[s.SessionID] = s.Clone()
	return s.Clone(), nil
}

// IDs returns the stored session ids in sorted order.
func (m *MemoryStore) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
