package memory

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/conversation"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*conversation.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*conversation.Session),
	}
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, sessionID string, sess *conversation.Session) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := *sess
	copied.History = append([]int(nil), sess.History...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = &copied
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*conversation.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[sessionID]
	if !ok {
		return nil, conversation.ErrSessionNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	ret := *sess
	ret.History = append([]int(nil), sess.History...)

	return &ret, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
