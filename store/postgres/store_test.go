package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/embedder/hashing"
	"github.com/w-h-a/ragchat/record"
	"github.com/w-h-a/ragchat/store"
)

var countries = []record.Record{
	{Name: "Andorra", Capital: "Andorra la Vella", Population: "84000", Area: "468.0"},
	{Name: "France", Capital: "Paris", Population: "67000000", Area: "551695.0"},
	{Name: "Chile", Capital: "Santiago", Population: "19000000", Area: "756102.0"},
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("quota exceeded")
}

func setup(t *testing.T, opts ...store.Option) store.Store {
	t.Helper()

	dsn := os.Getenv("RAGCHAT_TEST_POSTGRES_DSN")
	if len(dsn) == 0 {
		t.Skip("RAGCHAT_TEST_POSTGRES_DSN not set")
	}

	opts = append([]store.Option{
		store.WithLocation(dsn),
		store.WithEmbedder(hashing.NewEmbedder()),
	}, opts...)

	s, err := NewStore(opts...)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func collectionName(t *testing.T) string {
	t.Helper()
	return "test_" + uuid.NewString()
}

func TestPostgresStore_ReplaceCollection_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	name := collectionName(t)
	t.Cleanup(func() { s.DeleteCollection(ctx, name) })

	for range 2 {
		n, err := s.ReplaceCollection(ctx, name, countries)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	}

	count, err := s.Count(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPostgresStore_Query(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	name := collectionName(t)
	t.Cleanup(func() { s.DeleteCollection(ctx, name) })

	_, err := s.ReplaceCollection(ctx, name, countries)
	require.NoError(t, err)

	matches, err := s.Query(ctx, name, "What is the capital of France?", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "France", matches[0].Document.Metadata.Name)
	assert.Contains(t, matches[0].Document.Text, "Capital: Paris")
}

func TestPostgresStore_Query_AbsentCollection(t *testing.T) {
	s := setup(t)

	_, err := s.Query(context.Background(), collectionName(t), "France", 5)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestPostgresStore_ReplaceCollection_EmbedFailure(t *testing.T) {
	ctx := context.Background()
	s := setup(t, store.WithEmbedder(failingEmbedder{}))
	name := collectionName(t)

	_, err := s.ReplaceCollection(ctx, name, countries)
	assert.ErrorIs(t, err, store.ErrWrite)

	count, err := s.Count(ctx, name)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgresStore_DeleteCollection(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	name := collectionName(t)

	require.NoError(t, s.DeleteCollection(ctx, name))

	_, err := s.ReplaceCollection(ctx, name, countries)
	require.NoError(t, err)
	require.NoError(t, s.DeleteCollection(ctx, name))

	_, err = s.Query(ctx, name, "France", 5)
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}
