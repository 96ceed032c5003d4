package session

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore builds a process-local session store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]Session), now: time.Now}
}

func (s *memoryStore) Create(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *memoryStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || sess.Expired(s.now()) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
