package session

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one conversation's append-only turn history.
type Session struct {
	id    string
	turns []Turn
	mtx   sync.RWMutex
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Append(role Role, text string) Turn {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	turn := Turn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	s.turns = append(s.turns, turn)

	return turn
}

// History returns a copy of the turns in order.
func (s *Session) History() []Turn {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	cpy := make([]Turn, len(s.turns))
	copy(cpy, s.turns)

	return cpy
}

func (s *Session) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.turns = nil
}
