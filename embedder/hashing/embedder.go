package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/w-h-a/ragchat/embedder"
)

const defaultDimensions = 512

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// hashingEmbedder is a feature-hashing bag of words. It needs no corpus and
// no network, so the same text always maps to the same unit vector.
type hashingEmbedder struct {
	options embedder.Options
}

func (e *hashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, e.options.Dimensions)

	for _, tok := range Tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		idx := sum % uint64(e.options.Dimensions)

		// the top bit picks the sign so collisions tend to cancel
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(vec))
	if norm == 0 {
		return out, nil
	}

	for i, v := range vec {
		out[i] = float32(v / norm)
	}

	return out, nil
}

// Tokenize lowercases text and splits it into letter and digit runs.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if options.Dimensions <= 0 {
		options.Dimensions = defaultDimensions
	}

	return &hashingEmbedder{
		options: options,
	}
}
