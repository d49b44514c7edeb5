package generator

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	PromptPrefix string
	BaseURL      string
	MaxTokens    int
	Client       *http.Client
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithPromptPrefix(prefix string) Option {
	return func(o *Options) {
		o.PromptPrefix = prefix
	}
}

// WithBaseURL points the provider at a compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 1024,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// FullPrompt prepends the configured prefix to prompt.
func (o Options) FullPrompt(prompt string) string {
	if len(o.PromptPrefix) > 0 {
		return o.PromptPrefix + "\n" + prompt
	}
	return prompt
}
