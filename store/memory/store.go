package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/w-h-a/ragchat/record"
	"github.com/w-h-a/ragchat/store"
)

type generation struct {
	version string
	docs    []record.Document
	vectors [][]float32
}

type collectionsKey struct{}

// Collections holds the active generation of every collection. Stores built
// over the same Collections see the same data, so it can outlive any one
// store and its embedder client.
type Collections struct {
	active map[string]*generation
	mtx    sync.RWMutex
}

func NewCollections() *Collections {
	return &Collections{
		active: map[string]*generation{},
	}
}

// WithCollections backs the store with c instead of a private set.
func WithCollections(c *Collections) store.Option {
	return func(o *store.Options) {
		o.Context = context.WithValue(o.Context, collectionsKey{}, c)
	}
}

type memoryStore struct {
	options     store.Options
	collections *Collections
}

func (s *memoryStore) ReplaceCollection(ctx context.Context, name string, records []record.Record) (int, error) {
	docs := record.Documents(records)

	vectors, err := store.EmbedDocuments(ctx, s.options.Embedder, docs)
	if err != nil {
		return 0, &store.WriteError{Collection: name, Op: "embed", Cause: err}
	}

	next := &generation{
		version: uuid.NewString(),
		docs:    docs,
		vectors: vectors,
	}

	c := s.collections
	c.mtx.Lock()
	previous := c.active[name]
	c.active[name] = next
	c.mtx.Unlock()

	if previous != nil {
		slog.DebugContext(ctx, "discarded generation", "collection", name, "version", previous.version)
	}

	slog.DebugContext(ctx, "published generation", "collection", name, "version", next.version, "documents", len(docs))

	return len(docs), nil
}

func (s *memoryStore) Query(ctx context.Context, name string, text string, n int) ([]store.Match, error) {
	c := s.collections
	c.mtx.RLock()
	gen, ok := c.active[name]
	c.mtx.RUnlock()

	if !ok {
		return nil, store.ErrCollectionNotFound
	}

	if len(gen.docs) == 0 {
		return []store.Match{}, nil
	}

	vec, err := s.options.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// a generation is never mutated after publish so it can be read unlocked
	candidates := make([]store.Match, 0, len(gen.docs))
	for i, doc := range gen.docs {
		candidates = append(candidates, store.Match{
			Document: doc,
			Score:    store.CosineSimilarity(vec, gen.vectors[i]),
		})
	}

	return store.Rank(candidates, s.options.MinScore, store.ResultLimit(n)), nil
}

func (s *memoryStore) Count(ctx context.Context, name string) (int, error) {
	c := s.collections
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	gen, ok := c.active[name]
	if !ok {
		return 0, nil
	}

	return len(gen.docs), nil
}

func (s *memoryStore) DeleteCollection(ctx context.Context, name string) error {
	c := s.collections
	c.mtx.Lock()
	defer c.mtx.Unlock()

	delete(c.active, name)

	return nil
}

// Close leaves the collections in place for the next store built over them.
func (s *memoryStore) Close() error {
	return nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if options.Embedder == nil {
		panic("memory store requires an embedder")
	}

	collections, ok := options.Context.Value(collectionsKey{}).(*Collections)
	if !ok || collections == nil {
		collections = NewCollections()
	}

	s := &memoryStore{
		options:     options,
		collections: collections,
	}

	return s
}
