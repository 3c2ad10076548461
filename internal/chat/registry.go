// Package chat keeps one conversation per signed-in session and provides a
// remote Replier that drives a conversation through the HTTP API.
package chat

import (
	"sync"
	"time"

	"claudehub/internal/assistant"

	"github.com/sirupsen/logrus"
)

type conversation struct {
	session   *assistant.Session
	expiresAt time.Time
}

// Registry maps auth session ids to their conversation. A conversation lives
// until its auth session signs out or expires.
type Registry struct {
	mu       sync.Mutex
	replier  assistant.Replier
	sessions map[string]conversation
	now      func() time.Time
}

func NewRegistry(replier assistant.Replier) *Registry {
	return &Registry{
		replier:  replier,
		sessions: make(map[string]conversation),
		now:      time.Now,
	}
}

// Get returns the conversation for sessionID, starting an empty one on first
// use. expiresAt is the auth session's expiry; a zero value never expires.
func (r *Registry) Get(sessionID string, expiresAt time.Time) *assistant.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()

	c, ok := r.sessions[sessionID]
	if !ok {
		c = conversation{session: assistant.NewSession(r.replier)}
		logrus.Debugf("Started conversation for session %s", sessionID)
	}
	c.expiresAt = expiresAt
	r.sessions[sessionID] = c
	return c.session
}

func (r *Registry) Lookup(sessionID string) (*assistant.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[sessionID]
	if !ok || r.expired(c) {
		return nil, false
	}
	return c.session, true
}

// Drop discards the conversation of a session that has signed out.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; ok {
		delete(r.sessions, sessionID)
		logrus.Debugf("Dropped conversation for session %s", sessionID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expired(c conversation) bool {
	return !c.expiresAt.IsZero() && r.now().After(c.expiresAt)
}

// sweep drops conversations whose auth session has expired. Callers hold r.mu.
func (r *Registry) sweep() {
	for id, c := range r.sessions {
		if r.expired(c) {
			delete(r.sessions, id)
			logrus.Debugf("Expired conversation for session %s", id)
		}
	}
}
