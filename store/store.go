package store

import (
	"context"

	"github.com/w-h-a/ragchat/record"
)

// DefaultResults is the number of matches returned when a caller asks for
// n <= 0.
const DefaultResults = 5

// Store keeps named collections of embedded documents. At most one
// generation of a collection is active at a time and a reader sees either
// the old generation or the new one, never a mix.
type Store interface {
	// ReplaceCollection builds a new generation from records and publishes
	// it under name only once every document has been inserted.
	ReplaceCollection(ctx context.Context, name string, records []record.Record) (int, error)
	// Query returns up to n matches for text ordered by descending score.
	Query(ctx context.Context, name string, text string, n int) ([]Match, error)
	Count(ctx context.Context, name string) (int, error)
	DeleteCollection(ctx context.Context, name string) error
	Close() error
}

// Match is one retrieved document. Higher scores are more relevant.
type Match struct {
	Document record.Document `json:"document"`
	Score    float64         `json:"score"`
}
