package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/generator"
)

type scriptedGenerator struct {
	errs  []error
	calls int
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return "", s.errs[s.calls-1]
	}
	return "Paris", nil
}

func fast() []Option {
	return []Option{
		WithInitialInterval(time.Millisecond),
		WithMaxInterval(2 * time.Millisecond),
	}
}

func TestGenerate_RetriesTemporary(t *testing.T) {
	next := &scriptedGenerator{errs: []error{
		&generator.Error{Provider: "openai", StatusCode: http.StatusTooManyRequests, Cause: errors.New("slow down")},
		&generator.Error{Provider: "openai", StatusCode: http.StatusBadGateway, Cause: errors.New("bad gateway")},
	}}

	text, err := NewGenerator(next, fast()...).Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Paris", text)
	assert.Equal(t, 3, next.calls)
}

func TestGenerate_StopsOnPermanent(t *testing.T) {
	authErr := &generator.Error{Provider: "openai", StatusCode: http.StatusUnauthorized, Cause: errors.New("bad key")}
	next := &scriptedGenerator{errs: []error{authErr}}

	_, err := NewGenerator(next, fast()...).Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
	assert.True(t, generator.IsAuth(err))
}

func TestGenerate_GivesUpAfterMaxAttempts(t *testing.T) {
	temp := &generator.Error{Provider: "openai", StatusCode: http.StatusServiceUnavailable, Cause: errors.New("down")}
	next := &scriptedGenerator{errs: []error{temp, temp, temp, temp}}

	_, err := NewGenerator(next, append(fast(), WithMaxAttempts(2))...).Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
	assert.True(t, errors.Is(err, generator.ErrGeneration))
}

func TestGenerate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	temp := &generator.Error{Provider: "openai", Cause: errors.New("reset")}
	next := &scriptedGenerator{errs: []error{temp, temp, temp}}

	_, err := NewGenerator(next, fast()...).Generate(ctx, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrGeneration))
	assert.LessOrEqual(t, next.calls, 1)
}

type closingGenerator struct {
	scriptedGenerator
	closes int
}

func (c *closingGenerator) Close() error {
	c.closes++
	return nil
}

func TestClose_ForwardsToWrapped(t *testing.T) {
	next := &closingGenerator{}

	g := NewGenerator(next, fast()...)
	closer, ok := g.(io.Closer)
	require.True(t, ok)

	require.NoError(t, closer.Close())
	assert.Equal(t, 1, next.closes)

	assert.NoError(t, NewGenerator(&scriptedGenerator{}).(io.Closer).Close())
}
