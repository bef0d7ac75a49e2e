package server

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps the tokens of logged-in admin sessions
type SessionStore interface {
	Create(ctx context.Context, token string, ttl time.Duration) error
	Valid(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
	Close() error
}

// MemorySessionStore keeps sessions in process memory; they are lost on restart
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = s.now().Add(ttl)
	return nil
}

func (s *MemorySessionStore) Valid(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expires, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !s.now().Before(expires) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Close() error {
	return nil
}
