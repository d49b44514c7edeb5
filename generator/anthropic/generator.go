package anthropic

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/ragchat/generator"
)

const (
	provider     = "anthropic"
	defaultModel = "claude-3-5-haiku-latest"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(g.options.FullPrompt(prompt))),
		},
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", &generator.Error{Provider: provider, Cause: generator.ErrEmptyCompletion}
	}

	return result, nil
}

func classify(err error) *generator.Error {
	genErr := &generator.Error{Provider: provider, Cause: err}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		genErr.StatusCode = apiErr.StatusCode
	}

	return genErr
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		panic("anthropic generator requires an api key")
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &anthropicGenerator{
		options: options,
	}

	// retries belong to the retry wrapper
	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
		anthropicopt.WithMaxRetries(0),
	}

	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}

	if options.Client != nil {
		clientOpts = append(clientOpts, anthropicopt.WithHTTPClient(options.Client))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
