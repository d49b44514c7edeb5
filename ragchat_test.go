package ragchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/embedder/hashing"
	"github.com/w-h-a/ragchat/record"
	"github.com/w-h-a/ragchat/store"
	"github.com/w-h-a/ragchat/store/memory"
)

type fakeScraper struct {
	records []record.Record
}

func (f *fakeScraper) Scrape(ctx context.Context, sourceURL string) ([]record.Record, error) {
	return f.records, nil
}

type echoGenerator struct {
	closed bool
}

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "answer", nil
}

func (g *echoGenerator) Close() error {
	g.closed = true
	return nil
}

func newRAGChat(gen *echoGenerator) *RAGChat {
	sc := &fakeScraper{records: []record.Record{
		{Name: "France", Capital: "Paris", Population: "67000000", Area: "551695.0"},
	}}
	st := memory.NewStore(store.WithEmbedder(hashing.NewEmbedder()))
	return New(sc, st, gen)
}

func TestRAGChat_Chat(t *testing.T) {
	ctx := context.Background()
	r := newRAGChat(&echoGenerator{})

	n, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	id, err := r.CreateSession(ctx, "")
	require.NoError(t, err)

	answer, err := r.Chat(ctx, id, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)

	history, err := r.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "What is the capital of France?", history[0].Text)
	assert.Equal(t, RoleAssistant, history[1].Role)

	require.NoError(t, r.ClearHistory(ctx, id))
	history, err = r.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRAGChat_Chat_UnknownSession(t *testing.T) {
	_, err := newRAGChat(&echoGenerator{}).Chat(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRAGChat_Close(t *testing.T) {
	gen := &echoGenerator{}
	require.NoError(t, newRAGChat(gen).Close())
	assert.True(t, gen.closed)
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	builds := 0
	gens := []*echoGenerator{}

	loader := NewLoader(func(ctx context.Context) (*RAGChat, error) {
		builds++
		gen := &echoGenerator{}
		gens = append(gens, gen)
		return newRAGChat(gen), nil
	})

	first, err := loader.Get(ctx)
	require.NoError(t, err)
	second, err := loader.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	require.NoError(t, loader.Reset())
	assert.True(t, gens[0].closed)

	third, err := loader.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, builds)

	require.NoError(t, loader.Reset())
	require.NoError(t, loader.Reset())
}

func TestLoader_FactoryError(t *testing.T) {
	boom := errors.New("missing api key")
	loader := NewLoader(func(ctx context.Context) (*RAGChat, error) {
		return nil, boom
	})

	_, err := loader.Get(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLoader_ResetKeepsCollectionAndHistory(t *testing.T) {
	ctx := context.Background()
	collections := memory.NewCollections()

	loader := NewLoader(func(ctx context.Context) (*RAGChat, error) {
		sc := &fakeScraper{records: []record.Record{
			{Name: "France", Capital: "Paris", Population: "67000000", Area: "551695.0"},
		}}
		st := memory.NewStore(
			store.WithEmbedder(hashing.NewEmbedder()),
			memory.WithCollections(collections),
		)
		return New(sc, st, &echoGenerator{}), nil
	})

	r, err := loader.Get(ctx)
	require.NoError(t, err)

	n, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = r.CreateSession(ctx, "s1")
	require.NoError(t, err)
	_, err = r.Chat(ctx, "s1", "What is the capital of France?")
	require.NoError(t, err)

	require.NoError(t, loader.Reset())

	rebuilt, err := loader.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, r, rebuilt)

	count, err := rebuilt.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	prompt, err := rebuilt.Prompt(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Capital: Paris")

	history, err := rebuilt.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, []string{"s1"}, rebuilt.ListSessionIds(ctx))
}
