package server

import (
	"errors"
	"sync"

	"github.com/Ashenafi-pixel/deepdive-fractions/game"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore holds live sessions in memory. Nothing survives a restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]game.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]game.Session)}
}

func (s *SessionStore) Put(sess game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) (game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Update replaces the session id with fn's result while holding the lock,
// so concurrent requests on one session apply in order. The stored session
// is left alone when fn fails. prev is the session fn was given.
func (s *SessionStore) Update(id string, fn func(game.Session) (game.Session, error)) (prev, next game.Session, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.sessions[id]
	if !ok {
		return game.Session{}, game.Session{}, ErrSessionNotFound
	}
	next, err = fn(prev)
	if err != nil {
		return prev, game.Session{}, err
	}
	s.sessions[id] = next
	return prev, next, nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
