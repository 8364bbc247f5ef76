// Package openaicompat classifies images through OpenAI-compatible chat
// completion APIs. It serves both OpenRouter, which has a fixed list of free
// vision models, and OpenAI, whose model is discovered per key.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/discovery"
	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultReferer           = "http://localhost:5173"
	DefaultTitle             = "Adobe Stock Categorizer"
)

// OpenRouterModels are the free vision models tried, in order, for an
// OpenRouter key.
var OpenRouterModels = []string{
	"google/gemini-flash-1.5-8b:free",
	"meta-llama/llama-3.2-11b-vision-instruct:free",
	"qwen/qwen-2-vl-7b-instruct:free",
	"google/gemini-2.0-flash-thinking-exp:free",
}

// Options configures an adapter.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Models overrides the fixed OpenRouter model list.
	Models []string
	// Referer and Title are sent to OpenRouter as HTTP-Referer and X-Title.
	Referer string
	Title   string
}

// Adapter implements categorizer.Adapter for one OpenAI-compatible service.
type Adapter struct {
	id          models.ProviderID
	name        string
	baseURL     string
	timeout     time.Duration
	headers     map[string]string
	models      []string
	prefs       *discovery.Preferences
	explain     func(code int) string
	successName func(model string) string
	logger      logging.Logger
}

// NewOpenRouter creates the OpenRouter adapter.
func NewOpenRouter(opts Options, logger logging.Logger) *Adapter {
	modelList := opts.Models
	if len(modelList) == 0 {
		modelList = OpenRouterModels
	}
	referer := opts.Referer
	if referer == "" {
		referer = DefaultReferer
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return &Adapter{
		id:      models.ProviderOpenRouter,
		name:    "OpenRouter",
		baseURL: orDefault(opts.BaseURL, DefaultOpenRouterBaseURL),
		timeout: opts.Timeout,
		headers: map[string]string{
			"HTTP-Referer": referer,
			"X-Title":      title,
		},
		models:      modelList,
		explain:     explainOpenRouterStatus,
		successName: func(string) string { return "OpenRouter (Free)" },
		logger:      logging.OrDiscard(logger),
	}
}

// NewOpenAI creates the OpenAI adapter.
func NewOpenAI(opts Options, logger logging.Logger) *Adapter {
	prefs := discovery.OpenAIPreferences
	return &Adapter{
		id:          models.ProviderOpenAI,
		name:        "OpenAI",
		baseURL:     orDefault(opts.BaseURL, DefaultOpenAIBaseURL),
		timeout:     opts.Timeout,
		models:      opts.Models,
		prefs:       &prefs,
		explain:     explainOpenAIStatus,
		successName: func(model string) string { return fmt.Sprintf("OpenAI (%s)", model) },
		logger:      logging.OrDiscard(logger),
	}
}

func (a *Adapter) ID() models.ProviderID {
	return a.id
}

// Classify tries each candidate model until one answers. HTTP 401 stops the
// chain since every model would reject the same key.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error) {
	client := a.newClient(secret)
	log := a.logger.WithField(logging.FieldProvider, a.name)

	candidates, err := a.candidates(ctx, client)
	if err != nil {
		return models.ClassificationResult{}, &providererror.DiscoveryError{Provider: a.name, Err: err}
	}

	dataURI := img.DataURI(img.MIMEType())

	var lastErr error
	for _, model := range candidates {
		mlog := log.WithField(logging.FieldModel, model)
		mlog.Info("Attempting model")

		text, err := a.complete(ctx, client, model, dataURI)
		if err != nil {
			lastErr = a.wrapError(err, model)
			mlog.WithError(lastErr).Warn("Model attempt failed")
			if providererror.IsAuth(lastErr) {
				break
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = &providererror.ProviderError{
				Provider: a.name,
				Model:    model,
				Msg:      fmt.Sprintf("No response text from %s API using %s.", a.name, model),
			}
			mlog.Warn("Model returned no text")
			continue
		}

		mlog.Debug("Raw model response", logging.F("response", text))
		return categorizer.ParseResponse(text, model).WithProvider(a.successName(model)), nil
	}

	log.Error("All models failed", logging.F(logging.FieldCount, len(candidates)))
	return models.FailedResult(a.name, a.finalError(lastErr)), nil
}

// Candidates returns the models Classify would try for secret, in order.
func (a *Adapter) Candidates(ctx context.Context, secret string) ([]string, error) {
	return a.candidates(ctx, a.newClient(secret))
}

func (a *Adapter) newClient(secret string) *openai.Client {
	cfg := openai.DefaultConfig(secret)
	cfg.BaseURL = a.baseURL
	cfg.HTTPClient = &http.Client{
		Timeout:   a.timeout,
		Transport: &headerTransport{base: http.DefaultTransport, headers: a.headers},
	}
	return openai.NewClientWithConfig(cfg)
}

func (a *Adapter) candidates(ctx context.Context, client *openai.Client) ([]string, error) {
	if a.prefs == nil {
		return a.models, nil
	}
	prefs := *a.prefs
	if len(a.models) > 0 {
		prefs.Preferred = a.models
	}
	lister := discovery.ListerFunc(func(ctx context.Context) ([]string, error) {
		list, err := client.ListModels(ctx)
		if err != nil {
			return nil, a.wrapError(err, "")
		}
		names := make([]string, 0, len(list.Models))
		for _, m := range list.Models {
			names = append(names, m.ID)
		}
		return names, nil
	})
	return discovery.Candidates(ctx, lister, prefs)
}

func (a *Adapter) complete(ctx context.Context, client *openai.Client, model, dataURI string) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: categorizer.Prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
			},
		}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *Adapter) wrapError(err error, model string) error {
	code, detail := statusOf(err)
	if code == 0 {
		return &providererror.ProviderError{Provider: a.name, Model: model, Err: err}
	}
	explanation := a.explain(code)
	if explanation == "" {
		explanation = providererror.Truncate(detail, 200)
	}
	return &providererror.ProviderError{
		Provider:   a.name,
		Model:      model,
		StatusCode: code,
		Msg:        fmt.Sprintf("%s API Error (%d): %s", a.name, code, explanation),
		Err:        err,
	}
}

// finalError renders the message reported once every model failed.
func (a *Adapter) finalError(lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("All %s models failed.", a.name)
	}
	if providererror.StatusCode(lastErr) != 0 {
		return lastErr
	}
	return fmt.Errorf("All %s models failed. %w", a.name, lastErr)
}

func statusOf(err error) (int, string) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, apiErr.Message
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, string(reqErr.Body)
	}
	return 0, err.Error()
}

func explainOpenRouterStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Invalid API key. Get a new one from openrouter.ai/keys"
	case http.StatusTooManyRequests:
		return "Daily limit reached (200/day). Wait 24 hours or create another free key"
	case http.StatusPaymentRequired:
		return "This model requires credits. Use a :free model instead"
	default:
		return ""
	}
}

func explainOpenAIStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Invalid API key."
	case http.StatusTooManyRequests:
		return "Rate limit or quota exceeded."
	case http.StatusNotFound:
		return "Model not found or not available for this key."
	default:
		return ""
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
