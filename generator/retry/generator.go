package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/w-h-a/ragchat/generator"
)

type Option func(*Options)

type Options struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Context         context.Context
}

// WithMaxAttempts bounds the total number of calls, the first included.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.MaxAttempts = n
	}
}

func WithInitialInterval(d time.Duration) Option {
	return func(o *Options) {
		o.InitialInterval = d
	}
}

func WithMaxInterval(d time.Duration) Option {
	return func(o *Options) {
		o.MaxInterval = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Context:         context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// retryGenerator retries temporary failures of the wrapped generator with
// exponential backoff.
type retryGenerator struct {
	options Options
	next    generator.Generator
}

func (g *retryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	attempt := 0

	op := func() error {
		attempt++

		var err error
		text, err = g.next.Generate(ctx, prompt)
		if err == nil {
			return nil
		}

		if !generator.IsTemporary(err) {
			return backoff.Permanent(err)
		}

		slog.WarnContext(ctx, "temporary generation failure", "attempt", attempt, "error", err)

		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.options.InitialInterval
	b.MaxInterval = g.options.MaxInterval
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = b
	if g.options.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(g.options.MaxAttempts-1))
	}

	err := backoff.Retry(op, backoff.WithContext(policy, ctx))
	if err == nil {
		return text, nil
	}

	var genErr *generator.Error
	if errors.As(err, &genErr) {
		return "", err
	}

	return "", &generator.Error{Provider: "retry", Cause: err}
}

// Close releases the wrapped generator when it holds a connection.
func (g *retryGenerator) Close() error {
	if c, ok := g.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func NewGenerator(next generator.Generator, opts ...Option) generator.Generator {
	if next == nil {
		panic("retry generator requires a generator to wrap")
	}

	return &retryGenerator{
		options: NewOptions(opts...),
		next:    next,
	}
}
