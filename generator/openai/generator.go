package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/ragchat/generator"
)

const provider = "openai"

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		MaxTokens: g.options.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: g.options.FullPrompt(prompt),
			},
		},
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", &generator.Error{Provider: provider, Cause: generator.ErrEmptyCompletion}
	}

	return rsp.Choices[0].Message.Content, nil
}

func classify(err error) *generator.Error {
	genErr := &generator.Error{Provider: provider, Cause: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	switch {
	case errors.As(err, &apiErr):
		genErr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		genErr.StatusCode = reqErr.HTTPStatusCode
	}

	return genErr
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		panic("openai generator requires an api key")
	}

	if len(options.Model) == 0 {
		options.Model = openai.GPT4oMini
	}

	g := &openAIGenerator{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)

	if len(options.BaseURL) > 0 {
		cfg.BaseURL = options.BaseURL
	}

	if options.Client != nil {
		cfg.HTTPClient = options.Client
	}

	g.client = openai.NewClientWithConfig(cfg)

	return g
}
