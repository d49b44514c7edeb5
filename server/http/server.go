package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/w-h-a/ragchat/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type middlewareKey struct{}

// WithMiddleware wraps the handler, outermost first.
func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func middlewareFrom(ctx context.Context) []func(h http.Handler) http.Handler {
	ms, _ := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms
}

type httpServer struct {
	options server.Options
	srv     *http.Server
}

func (s *httpServer) Options() server.Options {
	return s.options
}

// Start listens on the configured address and serves until Stop.
func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	slog.InfoContext(s.options.Context, "http server listening", "address", ln.Addr().String())

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func NewServer(handler http.Handler, opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	ms := middlewareFrom(options.Context)
	for i := len(ms) - 1; i >= 0; i-- {
		handler = ms[i](handler)
	}

	s := &httpServer{
		options: options,
		srv: &http.Server{
			Addr:              options.Address,
			Handler:           otelhttp.NewHandler(handler, "ragchat"),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	return s
}
