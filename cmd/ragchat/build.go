package main

import (
	"context"
	"fmt"
	"io"

	"github.com/w-h-a/ragchat"
	"github.com/w-h-a/ragchat/embedder"
	googleembedder "github.com/w-h-a/ragchat/embedder/google"
	"github.com/w-h-a/ragchat/embedder/hashing"
	openaiembedder "github.com/w-h-a/ragchat/embedder/openai"
	"github.com/w-h-a/ragchat/generator"
	anthropicgenerator "github.com/w-h-a/ragchat/generator/anthropic"
	googlegenerator "github.com/w-h-a/ragchat/generator/google"
	openaigenerator "github.com/w-h-a/ragchat/generator/openai"
	"github.com/w-h-a/ragchat/generator/retry"
	"github.com/w-h-a/ragchat/internal/config"
	"github.com/w-h-a/ragchat/internal/service/rag"
	"github.com/w-h-a/ragchat/scraper"
	"github.com/w-h-a/ragchat/scraper/html"
	"github.com/w-h-a/ragchat/store"
	"github.com/w-h-a/ragchat/store/memory"
	"github.com/w-h-a/ragchat/store/postgres"
	"github.com/w-h-a/ragchat/store/qdrant"
)

// newFactory builds the pipeline lazily so that a missing credential only
// fails the first request that needs it. The in-memory collections are
// created once here so a rebuilt pipeline still sees the last refresh.
func newFactory(cfg config.Config) ragchat.Factory {
	collections := memory.NewCollections()

	return func(ctx context.Context) (*ragchat.RAGChat, error) {
		var closers []io.Closer

		emb, err := newEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		if c, ok := emb.(io.Closer); ok {
			closers = append(closers, c)
		}

		st, err := newStore(cfg, emb, collections)
		if err != nil {
			closeAll(closers)
			return nil, err
		}

		gen, err := newGenerator(cfg)
		if err != nil {
			closeAll(closers)
			st.Close()
			return nil, err
		}

		if cfg.Generator.MaxAttempts > 1 {
			gen = retry.NewGenerator(gen, retry.WithMaxAttempts(cfg.Generator.MaxAttempts))
		}

		r := ragchat.New(
			newScraper(cfg),
			st,
			gen,
			rag.WithSourceURL(cfg.Pipeline.SourceURL),
			rag.WithCollection(cfg.Pipeline.Collection),
			rag.WithResults(cfg.Pipeline.Results),
			rag.WithTimeout(cfg.Pipeline.Timeout),
			rag.WithGeneralFallback(cfg.Pipeline.GeneralFallback),
		)

		// ragchat.New already owns the store and the generator
		for _, c := range closers {
			r.WithCloser(c)
		}

		return r, nil
	}
}

func newScraper(cfg config.Config) scraper.Scraper {
	return html.NewScraper(
		scraper.WithTimeout(cfg.Scraper.Timeout),
		scraper.WithUserAgent(cfg.Scraper.UserAgent),
	)
}

func newEmbedder(cfg config.Config) (embedder.Embedder, error) {
	opts := []embedder.Option{
		embedder.WithApiKey(cfg.Keys.Key(cfg.Embedder.Provider)),
		embedder.WithModel(cfg.Embedder.Model),
		embedder.WithBaseURL(cfg.Embedder.BaseURL),
		embedder.WithDimensions(cfg.Embedder.Dimensions),
	}

	switch cfg.Embedder.Provider {
	case "hashing":
		return hashing.NewEmbedder(embedder.WithDimensions(cfg.Embedder.Dimensions)), nil
	case "openai":
		if len(cfg.Keys.OpenAIKey) == 0 {
			return nil, errMissingKey("embedder", cfg.Embedder.Provider)
		}
		return openaiembedder.NewEmbedder(opts...), nil
	case "google":
		if len(cfg.Keys.GoogleKey) == 0 {
			return nil, errMissingKey("embedder", cfg.Embedder.Provider)
		}
		return googleembedder.NewEmbedder(opts...)
	default:
		return nil, fmt.Errorf("unknown embedder %q", cfg.Embedder.Provider)
	}
}

func newStore(cfg config.Config, emb embedder.Embedder, collections *memory.Collections) (store.Store, error) {
	opts := []store.Option{
		store.WithLocation(cfg.Store.Location),
		store.WithApiKey(cfg.Keys.QdrantKey),
		store.WithEmbedder(emb),
		store.WithMinScore(cfg.Store.MinScore),
	}

	switch cfg.Store.Provider {
	case "memory":
		return memory.NewStore(append(opts, memory.WithCollections(collections))...), nil
	case "postgres":
		if len(cfg.Store.Location) == 0 {
			return nil, fmt.Errorf("store %q requires --store-location", cfg.Store.Provider)
		}
		return postgres.NewStore(opts...)
	case "qdrant":
		if len(cfg.Store.Location) == 0 {
			return nil, fmt.Errorf("store %q requires --store-location", cfg.Store.Provider)
		}
		return qdrant.NewStore(opts...), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store.Provider)
	}
}

func newGenerator(cfg config.Config) (generator.Generator, error) {
	key := cfg.Keys.Key(cfg.Generator.Provider)
	if len(key) == 0 {
		return nil, errMissingKey("generator", cfg.Generator.Provider)
	}

	opts := []generator.Option{
		generator.WithApiKey(key),
		generator.WithModel(cfg.Generator.Model),
		generator.WithBaseURL(cfg.Generator.BaseURL),
		generator.WithMaxTokens(cfg.Generator.MaxTokens),
		generator.WithPromptPrefix(cfg.Generator.PromptPrefix),
	}

	switch cfg.Generator.Provider {
	case "openai":
		return openaigenerator.NewGenerator(opts...), nil
	case "anthropic":
		return anthropicgenerator.NewGenerator(opts...), nil
	case "google":
		return googlegenerator.NewGenerator(opts...)
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.Generator.Provider)
	}
}

func errMissingKey(component, provider string) error {
	return fmt.Errorf("%s %q requires an api key: set --%s-api-key or the matching environment variable", component, provider, provider)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
