package rag

import (
	"context"
	"time"
)

const (
	DefaultSourceURL  = "https://www.scrapethissite.com/pages/simple/"
	DefaultCollection = "country_data"
)

type Option func(*Options)

type Options struct {
	SourceURL       string
	Collection      string
	Results         int
	Timeout         time.Duration
	GeneralFallback bool
	Context         context.Context
}

func WithSourceURL(url string) Option {
	return func(o *Options) {
		o.SourceURL = url
	}
}

func WithCollection(name string) Option {
	return func(o *Options) {
		o.Collection = name
	}
}

// WithResults sets how many documents are retrieved per question.
func WithResults(n int) Option {
	return func(o *Options) {
		o.Results = n
	}
}

// WithTimeout bounds every Refresh and Answer call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithGeneralFallback controls whether a question with no retrieved context
// is still sent to the model with the general knowledge prompt. When off,
// such questions are answered with NoDataMessage or RetrievalErrorMessage.
func WithGeneralFallback(enabled bool) Option {
	return func(o *Options) {
		o.GeneralFallback = enabled
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		SourceURL:       DefaultSourceURL,
		Collection:      DefaultCollection,
		Results:         5,
		Timeout:         60 * time.Second,
		GeneralFallback: true,
		Context:         context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
