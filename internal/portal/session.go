package portal

import (
	"sync"
)

// Session owns the bearer token for one signed-in attendee. It is the
// single place the token lives; every request reads it from here, and
// a 401 anywhere invalidates it exactly once.
type Session struct {
	mu           sync.Mutex
	token        string
	onInvalidate func()
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Logout clears the token without firing the invalidation hook.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// OnInvalidate registers the single subscription point for "session
// invalidated" events (typically a redirect to the login page).
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// invalidate drops the token and fires the hook. Only fires while a
// token is still held, so overlapping 401 responses notify once.
func (s *Session) invalidate() {
	s.mu.Lock()
	hadToken := s.token != ""
	s.token = ""
	fn := s.onInvalidate
	s.mu.Unlock()

	if hadToken && fn != nil {
		fn()
	}
}
