package rag

import "errors"

var ErrEmptyQuery = errors.New("query is required")

// Replies shown to the user in place of a generated answer. None of them
// carries error detail.
const (
	NoDataMessage         = "No data available."
	RetrievalErrorMessage = "Error retrieving data."
	ApologyMessage        = "Sorry, I encountered an error while generating the response."
	AuthFailureMessage    = "The model provider rejected the configured API key. Please check your credentials."
	EmptyQueryMessage     = "Please ask a question."
)
