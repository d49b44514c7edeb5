package server

import "context"

type Server interface {
	Options() Options
	Start() error
	Stop(ctx context.Context) error
}

type Option func(*Options)

type Options struct {
	Address string
	Context context.Context
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address: ":8080",
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
