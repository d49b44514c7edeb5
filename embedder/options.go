package embedder

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	ApiKey     string
	Model      string
	BaseURL    string
	Dimensions int
	Client     *http.Client
	Context    context.Context
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

// WithBaseURL points the provider at a compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

// WithDimensions fixes the vector length for providers that let the caller
// choose it.
func WithDimensions(dimensions int) Option {
	return func(o *Options) {
		o.Dimensions = dimensions
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
