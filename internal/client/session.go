package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultIdentityWait bounds how long a request waits for the identity state
const DefaultIdentityWait = 5 * time.Second

// TokenSource yields a fresh credential for the signed-in user
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same credential
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Session tracks whether the identity state is known yet and who is signed in.
// Until SetUser is first called, Credential waits up to IdentityWait.
type Session struct {
	IdentityWait time.Duration

	mu        sync.Mutex
	resolved  bool
	user      TokenSource
	listeners map[uint64]chan struct{}
	nextID    uint64
}

// NewSession returns a session whose identity state is not yet resolved
func NewSession() *Session {
	return &Session{IdentityWait: DefaultIdentityWait, listeners: map[uint64]chan struct{}{}}
}

// SetUser resolves the identity state. A nil user means signed out.
// Pending Credential calls are released once, on the first call.
func (s *Session) SetUser(user TokenSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.resolved = true
	for id, ch := range s.listeners {
		close(ch)
		delete(s.listeners, id)
	}
}

// Credential returns the current user's token, or false when there is none.
// It never blocks longer than IdentityWait or past ctx.
func (s *Session) Credential(ctx context.Context) (string, bool) {
	user, ok := s.awaitUser(ctx)
	if !ok || user == nil {
		return "", false
	}
	token, err := user.Token(ctx)
	if err != nil || token == "" {
		logrus.WithError(err).Warn("Could not obtain a token for the signed-in user")
		return "", false
	}
	return token, true
}

func (s *Session) awaitUser(ctx context.Context) (TokenSource, bool) {
	s.mu.Lock()
	if s.resolved {
		user := s.user
		s.mu.Unlock()
		return user, true
	}
	id := s.nextID
	s.nextID++
	ch := make(chan struct{})
	s.listeners[id] = ch
	s.mu.Unlock()

	wait := s.IdentityWait
	if wait <= 0 {
		wait = DefaultIdentityWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ch:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.user, true
	case <-timer.C:
	case <-ctx.Done():
	}

	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
	return nil, false
}

// pending reports the number of registered listeners
func (s *Session) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
