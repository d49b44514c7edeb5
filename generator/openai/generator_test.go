package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/generator"
)

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Paris"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	g := NewGenerator(
		generator.WithApiKey("sk-test"),
		generator.WithBaseURL(srv.URL),
		generator.WithPromptPrefix("be brief"),
	)

	text, err := g.Generate(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", text)

	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "be brief\nWhat is the capital of France?", messages[0].(map[string]any)["content"])
}

func TestGenerate_StatusErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		auth      bool
		temporary bool
	}{
		{"unauthorized", http.StatusUnauthorized, true, false},
		{"rate limited", http.StatusTooManyRequests, false, true},
		{"server error", http.StatusInternalServerError, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "invalid_request_error"}}`))
			}))
			defer srv.Close()

			g := NewGenerator(generator.WithApiKey("sk-test"), generator.WithBaseURL(srv.URL))

			_, err := g.Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.True(t, errors.Is(err, generator.ErrGeneration))

			var genErr *generator.Error
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, tc.status, genErr.StatusCode)
			assert.Equal(t, tc.auth, genErr.IsAuth())
			assert.Equal(t, tc.temporary, genErr.Temporary())
		})
	}
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "choices": []}`))
	}))
	defer srv.Close()

	g := NewGenerator(generator.WithApiKey("sk-test"), generator.WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, generator.ErrEmptyCompletion)
	assert.ErrorIs(t, err, generator.ErrGeneration)
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	assert.Panics(t, func() { NewGenerator() })
}
