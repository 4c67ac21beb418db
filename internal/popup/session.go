// Package popup implements the review-check popup: a session holding the
// response cache, the in-flight registry and the active cancellation token,
// and the controller that drives a submission through them.
package popup

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/roasbeef/spotter/internal/inflight"
	"github.com/roasbeef/spotter/internal/respcache"
)

// ErrSessionClosed is returned when submitting to a closed session.
var ErrSessionClosed = errors.New("popup session closed")

// SessionConfig configures a Session.
type SessionConfig struct {
	// Backend serves the summary and ad-score calls.
	Backend inflight.Backend

	// Cache bounds the response cache. Zero values select the defaults.
	Cache respcache.Config

	Log *slog.Logger
}

// token is the cancellation handle of one fetching submission. Tokens are
// compared by pointer identity.
type token struct {
	id    uuid.UUID
	lease *inflight.Lease
}

// Session is the state of one open popup. Nothing in it outlives Close.
type Session struct {
	cache    *respcache.Cache
	registry *inflight.Registry
	log      *slog.Logger

	mu     sync.Mutex
	active *token
	closed bool
}

// NewSession creates a session with an empty cache and registry.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	return &Session{
		cache:    respcache.New(cfg.Cache),
		registry: inflight.NewRegistry(cfg.Backend, cfg.Log),
		log:      cfg.Log.With("component", "popup"),
	}
}

// Cache returns the session's response cache.
func (s *Session) Cache() *respcache.Cache {
	return s.cache
}

// Registry returns the session's in-flight registry.
func (s *Session) Registry() *inflight.Registry {
	return s.registry
}

// replaceActive installs tok as the current token and returns the one it
// replaced, if any. A nil tok leaves no token active.
func (s *Session) replaceActive(tok *token) (*token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	prev := s.active
	s.active = tok

	return prev, nil
}

// isCurrent reports whether tok is still the active token.
func (s *Session) isCurrent(tok *token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.closed && s.active == tok
}

// isClosed reports whether Close was called.
func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// ActiveToken returns the id of the current token, if a fetch is active.
func (s *Session) ActiveToken() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return uuid.Nil, false
	}

	return s.active.id, true
}

// Close retires the active token and cancels every outstanding backend
// call. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	prev := s.active
	s.active = nil
	s.mu.Unlock()

	if prev != nil {
		prev.lease.Release()
	}
	s.registry.Close()

	s.log.Debug("Popup session closed")
}
