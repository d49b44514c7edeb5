package store

import (
	"context"
	"math"
	"sort"

	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/record"
)

// NoMinScore is below every cosine similarity.
const NoMinScore = -2.0

func ResultLimit(n int) int {
	if n <= 0 {
		return DefaultResults
	}
	return n
}

// EmbedDocuments embeds every document text in order.
func EmbedDocuments(ctx context.Context, e embedder.Embedder, docs []record.Document) ([][]float32, error) {
	vectors := make([][]float32, 0, len(docs))
	for _, doc := range docs {
		vec, err := e.Embed(ctx, doc.Text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// Rank sorts matches by descending score, drops those under min and keeps
// at most n.
func Rank(matches []Match, min float64, n int) []Match {
	kept := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Score < min {
			continue
		}
		kept = append(kept, m)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > n {
		kept = kept[:n]
	}

	return kept
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
