package chat

import (
	"sync"

	"github.com/effective-security/x/values"
	"github.com/saahil/toolcalling/chatmodel"
)

// Session is the append-only log of turns of one chat. It is owned
// exclusively by one chat session and created at session start.
type Session struct {
	mu     sync.RWMutex
	chatID string
	turns  []Turn
}

// NewSession creates a Session with the given chat ID, generating a new
// ID when empty.
func NewSession(chatID string) *Session {
	return &Session{
		chatID: values.StringsCoalesce(chatID, chatmodel.NewChatID()),
	}
}

// ChatID returns the session's chat ID.
func (s *Session) ChatID() string {
	return s.chatID
}

// Append adds a completed turn to the session.
func (s *Session) Append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

// Turns returns a copy of the session's turns, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Reset clears the session's turns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}
