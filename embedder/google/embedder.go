package google

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/ragchat/embedder"
	genaiopt "google.golang.org/api/option"
)

const defaultModel = "text-embedding-004"

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := e.client.EmbeddingModel(e.options.Model)
	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("google embeddings: %w", err)
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("google embeddings: %w", embedder.ErrEmptyEmbedding)
	}

	return rsp.Embedding.Values, nil
}

// Close releases the underlying client connection.
func (e *googleEmbedder) Close() error {
	return e.client.Close()
}

func NewEmbedder(opts ...embedder.Option) (embedder.Embedder, error) {
	options := embedder.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		return nil, fmt.Errorf("google embedder requires an api key")
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &googleEmbedder{
		options: options,
	}

	clientOpts := []genaiopt.ClientOption{genaiopt.WithAPIKey(options.ApiKey)}

	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.BaseURL))
	}

	client, err := genai.NewClient(options.Context, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google embedder: %w", err)
	}

	e.client = client

	return e, nil
}
