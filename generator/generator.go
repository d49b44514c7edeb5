package generator

import "context"

// Generator turns a single prompt into generated text. Every failure is
// returned as an *Error.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
