// Package session holds the client-side view of the admin session: the
// capability the client currently has and the token that proves it.
//
// A Session moves between its two capabilities only through three transitions:
// the cold-start probe (ApplyProbe), a successful login (Elevate) and a logout
// (Revoke). It is created by the owner of the dashboard state and injected into
// whatever issues backend requests.
package session

import (
	"errors"
	"sync"
)

// ErrUnauthorized is matched by errors caused by a missing or expired session
var ErrUnauthorized = errors.New("unauthorized")

// Capability is what the caller may see and do
type Capability int

const (
	// Anonymous callers see the public projection only
	Anonymous Capability = iota
	// Elevated callers see private content and may mutate
	Elevated
)

func (c Capability) String() string {
	switch c {
	case Anonymous:
		return "anonymous"
	case Elevated:
		return "elevated"
	}
	return "unknown"
}

// Session is safe for concurrent use
type Session struct {
	mu         sync.RWMutex
	token      string
	capability Capability
}

// New returns an anonymous session, optionally carrying a token restored from
// a previous run. The token is only trusted after ApplyProbe(true).
func New(token string) *Session {
	return &Session{token: token}
}

// Token returns the bearer token to attach to requests, or ""
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Capability returns the last capability set by a transition
func (s *Session) Capability() Capability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capability
}

// ApplyProbe records the result of a privileged read issued at cold start
func (s *Session) ApplyProbe(ok bool) Capability {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.capability = Elevated
	} else {
		s.capability = Anonymous
		s.token = ""
	}
	return s.capability
}

// Elevate is called after the backend accepted credentials
func (s *Session) Elevate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.capability = Elevated
}

// Revoke drops the token and returns to anonymous
func (s *Session) Revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.capability = Anonymous
}
