package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrorReply is the assistant turn recorded when a reply could not be produced.
const ErrorReply = "Sorry, I encountered an error. Please make sure your Anthropic API key is configured correctly."

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrPending      = errors.New("a reply is already pending")
)

type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Replier produces the assistant's answer to message given the prior history.
type Replier interface {
	Reply(ctx context.Context, message string, history []HistoryItem) (Response, error)
}

// Session is one conversation transcript. At most one Submit is in flight at
// a time, so every user turn is directly followed by its assistant turn.
type Session struct {
	mu         sync.Mutex
	replier    Replier
	turns      []Turn
	pending    bool
	generation uint64
	now        func() time.Time
}

func NewSession(replier Replier) *Session {
	return &Session{
		replier: replier,
		now:     time.Now,
	}
}

// Submit sends message and records the exchange. On a failed reply the
// apology turn is recorded and the error is returned alongside it.
func (s *Session) Submit(ctx context.Context, message string) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return Response{}, ErrPending
	}
	history := s.historyLocked()
	s.appendLocked(RoleUser, message)
	s.pending = true
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()

	resp, err := s.replier.Reply(ctx, message, history)
	if err != nil {
		logrus.Errorf("Assistant reply failed: %v", err)
		resp = Response{Text: ErrorReply, Mode: resp.Mode}
	}

	s.mu.Lock()
	// A Clear during the call started a new conversation; the reply belongs
	// to the old one.
	if s.generation == generation {
		s.appendLocked(RoleAssistant, resp.Text)
	}
	s.mu.Unlock()

	return resp, err
}

// Clear empties the transcript.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.generation++
}

func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) historyLocked() []HistoryItem {
	history := make([]HistoryItem, len(s.turns))
	for i, t := range s.turns {
		history[i] = HistoryItem{Role: t.Role, Content: t.Content}
	}
	return history
}

func (s *Session) appendLocked(role, content string) {
	ts := s.now()
	if n := len(s.turns); n > 0 && !ts.After(s.turns[n-1].Timestamp) {
		ts = s.turns[n-1].Timestamp.Add(time.Nanosecond)
	}
	s.turns = append(s.turns, Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	})
}
