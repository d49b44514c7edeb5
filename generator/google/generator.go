package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/w-h-a/ragchat/generator"
	"google.golang.org/api/googleapi"
	genaiopt "google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const (
	provider     = "google"
	defaultModel = "gemini-1.5-flash"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := genai.Text(g.options.FullPrompt(prompt))

	model := g.client.GenerativeModel(g.options.Model)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	rsp, err := model.GenerateContent(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", &generator.Error{Provider: provider, Cause: generator.ErrEmptyCompletion}
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", &generator.Error{Provider: provider, Cause: generator.ErrEmptyCompletion}
	}

	return b.String(), nil
}

// Close releases the underlying client connection.
func (g *googleGenerator) Close() error {
	return g.client.Close()
}

func classify(err error) *generator.Error {
	genErr := &generator.Error{Provider: provider, Cause: err}

	var apiErr *apierror.APIError
	var gerr *googleapi.Error

	switch {
	case errors.As(err, &apiErr):
		genErr.StatusCode = statusFromAPIError(apiErr)
	case errors.As(err, &gerr):
		genErr.StatusCode = gerr.Code
	}

	return genErr
}

// statusFromAPIError maps grpc codes onto the http statuses the generator
// error classifies.
func statusFromAPIError(apiErr *apierror.APIError) int {
	if code := apiErr.HTTPCode(); code > 0 {
		return code
	}

	if apiErr.Reason() == "API_KEY_INVALID" {
		return http.StatusUnauthorized
	}

	if apiErr.GRPCStatus() == nil {
		return 0
	}

	switch apiErr.GRPCStatus().Code() {
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal, codes.Unknown:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

func NewGenerator(opts ...generator.Option) (generator.Generator, error) {
	options := generator.NewOptions(opts...)

	if len(options.ApiKey) == 0 {
		return nil, fmt.Errorf("google generator requires an api key")
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &googleGenerator{
		options: options,
	}

	clientOpts := []genaiopt.ClientOption{genaiopt.WithAPIKey(options.ApiKey)}

	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.BaseURL))
	}

	client, err := genai.NewClient(options.Context, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google generator: %w", err)
	}

	g.client = client

	return g, nil
}
