// Package session provides session-keyed storage for conversation state.
// Each session's record and history are isolated; nothing is shared
// across sessions.
package session

import (
	"context"
	"sync"

	"github.com/healthcareplus/clinic-assistant/internal/conversation"
)

// MemoryStore keeps sessions in process memory. It is the default store
// for single-instance deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*conversation.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*conversation.Session)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*conversation.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, conversation.ErrSessionNotFound
	}
	clone := *sess
	clone.History = append([]conversation.ChatMessage(nil), sess.History...)
	return &clone, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *conversation.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *sess
	clone.History = append([]conversation.ChatMessage(nil), sess.History...)
	m.sessions[sess.ID] = &clone
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
