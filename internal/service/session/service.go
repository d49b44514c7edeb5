package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Service struct {
	sessions map[string]*Session
	mtx      sync.RWMutex
}

// CreateSession returns the session with id, creating it if needed. An
// empty id gets a fresh uuid.
func (s *Service) CreateSession(ctx context.Context, id string) (*Session, error) {
	if len(strings.TrimSpace(id)) == 0 {
		id = uuid.NewString()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if session, ok := s.sessions[id]; ok {
		return session, nil
	}

	session := &Session{
		id: id,
	}

	s.sessions[id] = session

	return session, nil
}

func (s *Service) ListSessionIds(ctx context.Context) []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return session, nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.sessions, id)
}

func New() *Service {
	return &Service{
		sessions: map[string]*Session{},
		mtx:      sync.RWMutex{},
	}
}
