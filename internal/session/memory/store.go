// Package memory provides an in-process session store for development and
// single-instance deployments. Sessions are lost on restart.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Store keeps sessions in a map guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]portal.Session
}

// NewStore constructs a Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]portal.Session),
	}
}

// Get returns the session for token.
func (s *Store) Get(_ context.Context, token string) (portal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return portal.Session{}, portal.ErrSessionNotFound
	}
	return sess, nil
}

// Set creates or replaces the session keyed by its token.
func (s *Store) Set(_ context.Context, session portal.Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

// Update modifies the session for token in place. A cleared token stays
// cleared.
func (s *Store) Update(_ context.Context, token string, fn func(*portal.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return portal.ErrSessionNotFound
	}
	fn(&sess)
	sess.Token = token
	s.sessions[token] = sess
	return nil
}

// Clear removes the session for token. Unknown tokens are ignored.
func (s *Store) Clear(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
