package provider

import (
	"context"
	"fmt"
	"time"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/provider/gemini"
	"fjacquet/stock-categorizer/internal/provider/googlevision"
	"fjacquet/stock-categorizer/internal/provider/huggingface"
	"fjacquet/stock-categorizer/internal/provider/imagga"
	"fjacquet/stock-categorizer/internal/provider/local"
	"fjacquet/stock-categorizer/internal/provider/openaicompat"
)

// Settings carries the per-provider knobs used to build adapters. Empty
// fields select each adapter's defaults.
type Settings struct {
	Timeout time.Duration

	GoogleVisionEndpoint string
	GeminiEndpoint       string
	OpenRouterBaseURL    string
	OpenRouterModels     []string
	OpenRouterReferer    string
	OpenRouterTitle      string
	OpenAIBaseURL        string
	OpenAIModels         []string
	HuggingFaceEndpoints []string
	HuggingFaceModels    []string
	ImaggaBaseURL        string

	LocalPolicy local.Policy
	LocalTopK   int
	// LocalModelName labels local results; empty means "Metadata".
	LocalModelName string
}

// Build creates one adapter per known provider. handle supplies the local
// model; nil selects the metadata labeller.
func Build(s Settings, handle *local.Handle, logger logging.Logger) (*Registry, error) {
	if handle == nil {
		handle = local.NewHandle(local.LoadMetadataModel)
	}

	reg, err := NewRegistry(
		googlevision.New(s.GoogleVisionEndpoint, logger),
		gemini.New(s.GeminiEndpoint, logger),
		openaicompat.NewOpenRouter(openaicompat.Options{
			BaseURL: s.OpenRouterBaseURL,
			Timeout: s.Timeout,
			Models:  s.OpenRouterModels,
			Referer: s.OpenRouterReferer,
			Title:   s.OpenRouterTitle,
		}, logger),
		openaicompat.NewOpenAI(openaicompat.Options{
			BaseURL: s.OpenAIBaseURL,
			Timeout: s.Timeout,
			Models:  s.OpenAIModels,
		}, logger),
		huggingface.New(huggingface.Options{
			Endpoints:     s.HuggingFaceEndpoints,
			CaptionModels: s.HuggingFaceModels,
			Timeout:       s.Timeout,
		}, logger),
		imagga.New(s.ImaggaBaseURL, s.Timeout, logger),
		local.New(handle, local.Options{Policy: s.LocalPolicy, TopK: s.LocalTopK, ModelName: s.LocalModelName}, logger),
	)
	if err != nil {
		return nil, err
	}
	if missing := reg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("no adapter for providers %v", missing)
	}
	return reg, nil
}

// Discoverer is implemented by adapters that choose models per credential.
type Discoverer interface {
	Candidates(ctx context.Context, secret string) ([]string, error)
}

// Discoverer returns the model discovery of a provider, if it has one.
func (r *Registry) Discoverer(id models.ProviderID) (Discoverer, bool) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, false
	}
	d, ok := a.(Discoverer)
	return d, ok
}
