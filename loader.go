package ragchat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/w-h-a/ragchat/internal/service/session"
)

// Factory builds a fully wired RAGChat.
type Factory func(ctx context.Context) (*RAGChat, error)

// Loader builds a RAGChat on first use and hands out the same instance until
// Reset. Conversation history belongs to the Loader, so it survives a Reset.
type Loader struct {
	factory  Factory
	sessions *session.Service
	current  *RAGChat
	mtx      sync.Mutex
}

func (l *Loader) Get(ctx context.Context) (*RAGChat, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.current != nil {
		return l.current, nil
	}

	r, err := l.factory(ctx)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "built ragchat bundle")

	r.session = l.sessions
	l.current = r

	return r, nil
}

// Reset closes the cached instance so the next Get rebuilds its clients.
// Sessions and their history are kept.
func (l *Loader) Reset() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.current == nil {
		return nil
	}

	err := l.current.Close()
	l.current = nil

	return err
}

func NewLoader(factory Factory) *Loader {
	if factory == nil {
		panic("loader requires a factory")
	}

	return &Loader{
		factory:  factory,
		sessions: session.New(),
	}
}
