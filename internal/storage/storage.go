package storage

import (
	"sync"

	"github.com/neurobin-systems/neurobin/internal/capture"
)

// SessionStore holds the live capture sessions, keyed by session ID.
type SessionStore struct {
	sessions map[string]*capture.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*capture.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*capture.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *capture.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*capture.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*capture.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// Delete removes a session from the store and releases any camera stream it
// still holds.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, exists := s.sessions[sessionID]; exists {
		session.Close()
	}
	delete(s.sessions, sessionID)
}

// Close releases every stored session's resources. Called on server shutdown
// so no camera handle outlives the process.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		session.Close()
	}
}
