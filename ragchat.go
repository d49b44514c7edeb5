package ragchat

import (
	"context"
	"errors"
	"io"

	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/internal/service/rag"
	"github.com/w-h-a/ragchat/internal/service/session"
	"github.com/w-h-a/ragchat/scraper"
	"github.com/w-h-a/ragchat/store"
)

type (
	Turn = session.Turn
	Role = session.Role
)

const (
	RoleUser      = session.RoleUser
	RoleAssistant = session.RoleAssistant
)

var (
	ErrSessionNotFound = session.ErrNotFound
	ErrEmptyQuery      = rag.ErrEmptyQuery
)

// RAGChat answers questions about scraped country facts and keeps one turn
// history per session. A RAGChat handed out by a Loader shares the Loader's
// sessions.
type RAGChat struct {
	rag     *rag.Service
	session *session.Service
	closers []io.Closer
}

func (r *RAGChat) Refresh(ctx context.Context) (int, error) {
	return r.rag.Refresh(ctx)
}

func (r *RAGChat) Answer(ctx context.Context, query string) string {
	return r.rag.Answer(ctx, query)
}

func (r *RAGChat) Prompt(ctx context.Context, query string) (string, error) {
	return r.rag.Prompt(ctx, query)
}

func (r *RAGChat) Verify(ctx context.Context, query string, n int) ([]store.Match, error) {
	return r.rag.Verify(ctx, query, n)
}

func (r *RAGChat) Collection() string {
	return r.rag.Collection()
}

func (r *RAGChat) Count(ctx context.Context) (int, error) {
	return r.rag.Count(ctx)
}

func (r *RAGChat) CreateSession(ctx context.Context, id string) (string, error) {
	session, err := r.session.CreateSession(ctx, id)
	if err != nil {
		return "", err
	}
	return session.ID(), nil
}

func (r *RAGChat) ListSessionIds(ctx context.Context) []string {
	return r.session.ListSessionIds(ctx)
}

func (r *RAGChat) DeleteSession(ctx context.Context, id string) {
	r.session.DeleteSession(ctx, id)
}

func (r *RAGChat) History(ctx context.Context, sessionId string) ([]Turn, error) {
	session, err := r.session.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return session.History(), nil
}

func (r *RAGChat) ClearHistory(ctx context.Context, sessionId string) error {
	session, err := r.session.GetSession(ctx, sessionId)
	if err != nil {
		return err
	}
	session.Clear()
	return nil
}

// Chat answers input inside a session, recording both turns. It only fails
// for an unknown session.
func (r *RAGChat) Chat(ctx context.Context, sessionId string, input string) (string, error) {
	session, err := r.session.GetSession(ctx, sessionId)
	if err != nil {
		return "", err
	}

	session.Append(RoleUser, input)

	answer := r.rag.Answer(ctx, input)

	session.Append(RoleAssistant, answer)

	return answer, nil
}

// Close releases every component that holds a connection.
func (r *RAGChat) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func New(
	scraper scraper.Scraper,
	store store.Store,
	generator generator.Generator,
	opts ...rag.Option,
) *RAGChat {
	closers := []io.Closer{store}
	if c, ok := generator.(io.Closer); ok {
		closers = append(closers, c)
	}

	return &RAGChat{
		rag:     rag.New(scraper, store, generator, opts...),
		session: session.New(),
		closers: closers,
	}
}

// WithCloser registers extra resources, such as an embedder client, to be
// released by Close.
func (r *RAGChat) WithCloser(c io.Closer) *RAGChat {
	r.closers = append(r.closers, c)
	return r
}
