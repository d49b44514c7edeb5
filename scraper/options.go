package scraper

import (
	"context"
	"net/http"
	"time"
)

type Option func(*Options)

type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Selectors Selectors
	Context   context.Context
}

// Selectors locate one entity and its four labeled fields.
type Selectors struct {
	Entity     string
	Name       string
	Capital    string
	Population string
	Area       string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Entity:     "div.country",
		Name:       "h3.country-name",
		Capital:    "span.country-capital",
		Population: "span.country-population",
		Area:       "span.country-area",
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

func WithUserAgent(ua string) Option {
	return func(o *Options) {
		o.UserAgent = ua
	}
}

func WithSelectors(selectors Selectors) Option {
	return func(o *Options) {
		o.Selectors = selectors
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout:   30 * time.Second,
		UserAgent: "ragchat/1.0",
		Selectors: DefaultSelectors(),
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
