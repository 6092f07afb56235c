package conversation

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by SessionStore.Load for unknown IDs.
var ErrSessionNotFound = errors.New("conversation: session not found")

// Session is the per-conversation unit of state: exactly one live
// BookingRecord plus the ordered message history. Session identity is
// always threaded explicitly; there is no process-global session.
type Session struct {
	ID      string        `json:"id"`
	Record  BookingRecord `json:"record"`
	History []ChatMessage `json:"history"`
}

// Started reports whether any user text has been processed.
func (s *Session) Started() bool {
	return len(s.History) > 0
}

// State derives the current conversation state.
func (s *Session) State() State {
	return DeriveState(s.Record, s.Started())
}

// Reset discards the record and history, returning the session to the
// greeting state.
func (s *Session) Reset() {
	s.Record = BookingRecord{}
	s.History = nil
}

// SessionStore persists sessions keyed by session ID. Implementations
// must isolate sessions from each other.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}
