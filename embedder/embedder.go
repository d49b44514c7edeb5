package embedder

import (
	"context"
	"errors"
)

var ErrEmptyEmbedding = errors.New("empty embedding")

// Embedder maps a document or query text to a dense vector. Every call on
// one Embedder returns vectors of the same length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
