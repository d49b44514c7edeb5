package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/ragchat/embedder"
)

const defaultModel = string(openai.SmallEmbedding3)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.options.Model),
	}

	if e.options.Dimensions > 0 {
		req.Dimensions = e.options.Dimensions
	}

	rsp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openai embeddings: %w", embedder.ErrEmptyEmbedding)
	}

	return rsp.Data[0].Embedding, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		panic("openai embedder requires an api key")
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)

	if len(options.BaseURL) > 0 {
		cfg.BaseURL = options.BaseURL
	}

	if options.Client != nil {
		cfg.HTTPClient = options.Client
	}

	e.client = openai.NewClientWithConfig(cfg)

	return e
}
