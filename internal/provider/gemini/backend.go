package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const generateContentMethod = "generateContent"

// backend is the slice of the Gemini API the adapter needs.
type backend interface {
	ListModels(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, model, prompt, mimeType string, data []byte) (string, error)
	Close() error
}

// backendFactory opens a backend for one API key.
type backendFactory func(ctx context.Context, apiKey string) (backend, error)

type genaiBackend struct {
	client *genai.Client
}

func newGenaiBackend(endpoint string) backendFactory {
	return func(ctx context.Context, apiKey string) (backend, error) {
		opts := []option.ClientOption{option.WithAPIKey(apiKey)}
		if endpoint != "" {
			opts = append(opts, option.WithEndpoint(endpoint))
		}
		client, err := genai.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return &genaiBackend{client: client}, nil
	}
}

// ListModels returns the models that support content generation.
func (b *genaiBackend) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	it := b.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if supportsGeneration(m.SupportedGenerationMethods) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func (b *genaiBackend) Generate(ctx context.Context, model, prompt, mimeType string, data []byte) (string, error) {
	gm := b.client.GenerativeModel(model)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt), genai.Blob{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (b *genaiBackend) Close() error {
	return b.client.Close()
}

func supportsGeneration(methods []string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == generateContentMethod {
			return true
		}
	}
	return false
}

// statusCode extracts the HTTP status from a Gemini client error.
func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return coded.HTTPCode()
	}
	return 0
}
