// Package store provides thread-safe, in-memory storage for chat
// sessions, the scammer blacklist, and the phishing-domain set.
//
// Design rationale: the persistence driver is an out-of-scope external
// collaborator for this system; an in-memory, mutex-protected store is
// sufficient for the sessions and blacklist this process handles, and a
// production deployment would swap this for Redis or Postgres without
// changing any caller.
package store

import (
	"sync"

	"upishield/internal/domain"
)

// ChatSessionStore is a thread-safe in-memory Chat Session Store (C10).
// Per-session mutation is serialized via a dedicated mutex per session, so
// concurrent turns on the same sessionId never interleave (spec.md §5).
type ChatSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession

	// byScammer is the secondary index required by spec.md §4.10.
	byScammer map[string][]string

	sessionLocks map[string]*sync.Mutex
}

// NewChatSessionStore creates an empty, ready-to-use store.
func NewChatSessionStore() *ChatSessionStore {
	return &ChatSessionStore{
		sessions:     make(map[string]*domain.ChatSession),
		byScammer:    make(map[string][]string),
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

// FindBySessionID retrieves a session by its primary key.
func (s *ChatSessionStore) FindBySessionID(sessionID string) (*domain.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// Create inserts a fresh session if one does not already exist, returning
// the existing session unchanged otherwise (idempotent on sessionID).
func (s *ChatSessionStore) Create(sessionID, scammerID, victimID string) *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}

	sess := domain.NewChatSession(sessionID, scammerID, victimID)
	s.sessions[sessionID] = sess
	s.byScammer[scammerID] = append(s.byScammer[scammerID], sessionID)
	return sess
}

// Save writes the whole session document back. Callers are expected to
// have gone through Lock/Unlock for the duration of their load-mutate-save
// cycle (see Lock).
func (s *ChatSessionStore) Save(session *domain.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
}

// FindByScammerID returns every session associated with a scammerId via
// the secondary index.
func (s *ChatSessionStore) FindByScammerID(scammerID string) []*domain.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byScammer[scammerID]
	out := make([]*domain.ChatSession, 0, len(ids))
	for _, id := range ids {
		if sess, ok := s.sessions[id]; ok {
			out = append(out, sess)
		}
	}
	return out
}

// Lock returns the per-session mutex for sessionID, creating it on first
// use. The Session Orchestrator (C12) holds this for the duration of one
// turn's load-mutate-save cycle so two concurrent turns on the same
// session are linearized, per spec.md §5.
func (s *ChatSessionStore) Lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	return lock
}
