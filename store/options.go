package store

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/ragchat/embedder"
)

type Option func(*Options)

type Options struct {
	Location string
	ApiKey   string
	Embedder embedder.Embedder
	MinScore float64
	Client   *http.Client
	Timeout  time.Duration
	Context  context.Context
}

// WithLocation sets the dsn or base url of the backing database.
func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

// WithMinScore drops matches scoring below min.
func WithMinScore(min float64) Option {
	return func(o *Options) {
		o.MinScore = min
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MinScore: NoMinScore,
		Timeout:  15 * time.Second,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
