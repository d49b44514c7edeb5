package rag

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/prompt"
	"github.com/w-h-a/ragchat/scraper"
	"github.com/w-h-a/ragchat/store"
)

type Service struct {
	options   Options
	scraper   scraper.Scraper
	store     store.Store
	generator generator.Generator
}

func (s *Service) Collection() string {
	return s.options.Collection
}

// Refresh scrapes the source and replaces the collection with the result.
// An empty scrape leaves the current collection untouched.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.scraper.Scrape(ctx, s.options.SourceURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to scrape source", "url", s.options.SourceURL, "error", err)
		return 0, err
	}

	slog.DebugContext(ctx, "scraped records", "count", len(records))

	if len(records) == 0 {
		slog.WarnContext(ctx, "scrape returned no records; keeping current collection", "collection", s.options.Collection)
		return 0, nil
	}

	n, err := s.store.ReplaceCollection(ctx, s.options.Collection, records)
	if err != nil {
		slog.ErrorContext(ctx, "failed to replace collection", "collection", s.options.Collection, "error", err)
		return 0, err
	}

	slog.InfoContext(ctx, "refreshed collection", "collection", s.options.Collection, "documents", n)

	return n, nil
}

// Answer never fails: any error is turned into one of the package replies.
func (s *Service) Answer(ctx context.Context, query string) string {
	if len(strings.TrimSpace(query)) == 0 {
		return EmptyQueryMessage
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, reply := s.prompt(ctx, query)
	if len(reply) > 0 {
		return reply
	}

	answer, err := s.generator.Generate(ctx, p)
	if err != nil {
		if generator.IsAuth(err) {
			slog.ErrorContext(ctx, "model provider rejected credentials", "error", err)
			return AuthFailureMessage
		}
		slog.ErrorContext(ctx, "failed to generate answer", "error", err)
		return ApologyMessage
	}

	slog.DebugContext(ctx, "generated answer", "length", len(answer))

	return answer
}

// Prompt returns the prompt Answer would send for query without calling the
// model.
func (s *Service) Prompt(ctx context.Context, query string) (string, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return "", ErrEmptyQuery
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, reply := s.prompt(ctx, query)
	if len(reply) > 0 {
		return "", errors.New(reply)
	}

	return p, nil
}

// Verify runs a retrieval only, returning the top n matches.
func (s *Service) Verify(ctx context.Context, query string, n int) ([]store.Match, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.Query(ctx, s.options.Collection, query, n)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx, s.options.Collection)
}

// prompt retrieves context and assembles the prompt. A non-empty reply means
// no prompt should be sent and reply is the answer.
func (s *Service) prompt(ctx context.Context, query string) (string, string) {
	matches, err := s.store.Query(ctx, s.options.Collection, query, s.options.Results)

	switch {
	case errors.Is(err, store.ErrCollectionNotFound):
		slog.WarnContext(ctx, "collection not found; refresh the data first", "collection", s.options.Collection)
		if !s.options.GeneralFallback {
			return "", NoDataMessage
		}
	case err != nil:
		slog.ErrorContext(ctx, "failed to query collection", "collection", s.options.Collection, "error", err)
		if !s.options.GeneralFallback {
			return "", RetrievalErrorMessage
		}
	case len(matches) == 0 && !s.options.GeneralFallback:
		return "", NoDataMessage
	}

	slog.DebugContext(ctx, "retrieved matches", "count", len(matches))

	block := prompt.FormatContext(matches)

	if block == prompt.NoContext {
		slog.DebugContext(ctx, "no context retrieved; using general knowledge prompt")
	}

	return prompt.Build(block, query), ""
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.options.Timeout)
}

func New(
	scraper scraper.Scraper,
	store store.Store,
	generator generator.Generator,
	opts ...Option,
) *Service {
	options := NewOptions(opts...)

	if options.Results <= 0 {
		options.Results = 5
	}

	if len(strings.TrimSpace(options.Collection)) == 0 {
		options.Collection = DefaultCollection
	}

	return &Service{
		options:   options,
		scraper:   scraper,
		store:     store,
		generator: generator,
	}
}
