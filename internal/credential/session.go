package credential

import (
	"log/slog"
	"sync"
)

// Session holds the bearer token for the running program. The source is
// read on first use and again after Invalidate, not on every request.
type Session struct {
	load func() (string, error)

	mu     sync.Mutex
	token  string
	loaded bool
}

// NewSession returns a Session backed by load, usually SessionToken.
func NewSession(load func() (string, error)) *Session {
	return &Session{load: load}
}

// Token returns the cached token. A failed read yields "" and is retried
// on the next call.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.token
	}
	token, err := s.load()
	if err != nil {
		slog.Warn("reading session token", "err", err)
		return ""
	}
	s.token = token
	s.loaded = true
	return token
}

// Invalidate drops the cached token. Call it when the API rejects the
// token so a fresh login is picked up.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = false
}
