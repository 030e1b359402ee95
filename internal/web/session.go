package web

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/username/team-calendar/internal/auth"
	"github.com/username/team-calendar/internal/dashboard"
)

// Session is one signed-in browser
type Session struct {
	ID    string
	Board *dashboard.Board

	mu       sync.Mutex
	auth     auth.Session
	lastSeen time.Time

	// held across a token refresh; refresh tokens are single-use
	refreshMu sync.Mutex
}

// Auth returns a copy of the provider session
func (s *Session) Auth() auth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

func (s *Session) setAuth(a auth.Session) {
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
}

// renew refreshes the provider session through refresh when it expires within
// margin of now. Concurrent callers wait for one refresh and share its result.
func (s *Session) renew(now time.Time, margin time.Duration, refresh func(refreshToken string) (*auth.Session, error)) (auth.Session, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	a := s.Auth()
	if !a.NeedsRefresh(now, margin) {
		return a, nil
	}

	renewed, err := refresh(a.RefreshToken)
	if err != nil {
		return a, err
	}
	if renewed.User.ID == "" {
		renewed.User = a.User
	}
	s.setAuth(*renewed)
	return *renewed, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions is the registry of live sessions keyed by cookie value
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessions creates a registry whose sessions expire after ttl without a request
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a session for a freshly signed-in user
func (r *Sessions) Create(a auth.Session, board *dashboard.Board, now time.Time) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:       id,
		Board:    board,
		auth:     a,
		lastSeen: now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return s, nil
}

// Get returns the live session for id. Expired sessions are not returned.
func (r *Sessions) Get(id string, now time.Time) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || now.Sub(s.idleSince()) > r.ttl {
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete drops the session for id
func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of registered sessions, expired ones included
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the ttl and returns how many were removed
func (r *Sessions) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
