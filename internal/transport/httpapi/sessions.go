package httpapi

import (
	"sync"

	"github.com/sandevgo/bidbot/internal/assistant"
)

// EngineFactory builds a fresh engine bound to an account. Each chat
// session gets its own instance so history and rate windows never leak
// across sessions.
type EngineFactory func(accountID string) *assistant.Engine

// session pairs an engine with a lock. The engine itself is
// single-writer; the transport serializes concurrent requests for the
// same session here.
type session struct {
	mu     sync.Mutex
	engine *assistant.Engine
}

type Sessions struct {
	mu       sync.Mutex
	factory  EngineFactory
	sessions map[string]*session
}

func NewSessions(factory EngineFactory) *Sessions {
	return &Sessions{
		factory:  factory,
		sessions: make(map[string]*session),
	}
}

// get returns the session for the account/session pair, creating it on
// first use. Keys are account-scoped so one account cannot attach to
// another's session.
func (s *Sessions) get(accountID, sessionID string) *session {
	key := accountID + "/" + sessionID

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := &session{engine: s.factory(accountID)}
	s.sessions[key] = sess
	return sess
}

// lookup returns an existing session or nil; it never creates one.
func (s *Sessions) lookup(accountID, sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[accountID+"/"+sessionID]
}
