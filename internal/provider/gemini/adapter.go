// Package gemini classifies images with Google's Gemini models. The model is
// chosen per API key from the models the key can list.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/discovery"
	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"
)

const providerName = "Google Gemini API"

// Adapter implements categorizer.Adapter for Gemini.
type Adapter struct {
	open   backendFactory
	prefs  discovery.Preferences
	logger logging.Logger
}

// New creates a Gemini adapter. endpoint overrides the API endpoint when set.
func New(endpoint string, logger logging.Logger) *Adapter {
	return &Adapter{
		open:   newGenaiBackend(endpoint),
		prefs:  discovery.GeminiPreferences,
		logger: logging.OrDiscard(logger),
	}
}

func (a *Adapter) ID() models.ProviderID {
	return models.ProviderGemini
}

// Candidates returns the ranked models Classify would try for secret.
func (a *Adapter) Candidates(ctx context.Context, secret string) ([]string, error) {
	b, err := a.open(ctx, secret)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()
	return discovery.Candidates(ctx, b, a.prefs)
}

// Classify discovers candidate models for secret and tries them in rank
// order. An invalid key (HTTP 401) stops the chain.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error) {
	log := a.logger.WithField(logging.FieldProvider, providerName)

	b, err := a.open(ctx, secret)
	if err != nil {
		return models.FailedResult(providerName, err), nil
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			log.WithError(cerr).Debug("Failed to close Gemini client")
		}
	}()

	candidates, err := discovery.Candidates(ctx, b, a.prefs)
	if err != nil {
		return models.ClassificationResult{}, &providererror.DiscoveryError{Provider: providerName, Err: err}
	}
	log.Debug("Candidate models", logging.F(logging.FieldModel, strings.Join(candidates, ",")))

	var lastErr error
	for _, model := range candidates {
		mlog := log.WithField(logging.FieldModel, model)
		mlog.Info("Attempting model")

		text, err := b.Generate(ctx, model, categorizer.Prompt, img.MIMEType(), img.Data)
		if err != nil {
			lastErr = wrapError(err, model)
			mlog.WithError(lastErr).Warn("Model attempt failed")
			if providererror.IsAuth(lastErr) {
				break
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = &providererror.ProviderError{Provider: providerName, Model: model, Msg: "No response text from Gemini API."}
			mlog.Warn("Model returned no text")
			continue
		}

		mlog.Debug("Raw model response", logging.F("response", text))
		result := categorizer.ParseResponse(text, model)
		return result.WithProvider(fmt.Sprintf("%s (%s)", providerName, model)), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no model produced an answer")
	}
	return models.FailedResult(providerName, lastErr), nil
}

// wrapError attaches the status explanation to a Gemini call failure.
func wrapError(err error, model string) error {
	code := statusCode(err)
	if code == 0 {
		return &providererror.ProviderError{Provider: providerName, Model: model, Err: err}
	}
	return &providererror.ProviderError{
		Provider:   providerName,
		Model:      model,
		StatusCode: code,
		Msg:        fmt.Sprintf("Gemini API Error (%d): %s", code, explainStatus(code, model, err)),
		Err:        err,
	}
}

func explainStatus(code int, model string, err error) string {
	switch code {
	case http.StatusBadRequest:
		return "Invalid request or image format."
	case http.StatusUnauthorized:
		return "Invalid API Key."
	case http.StatusForbidden:
		return "Permission denied (check API key scope)."
	case http.StatusNotFound:
		return fmt.Sprintf("Model '%s' not found.", model)
	case http.StatusTooManyRequests:
		return "Quota exceeded (Rate limit reached)."
	case http.StatusInternalServerError:
		return "Internal Google Server Error."
	default:
		return providererror.Truncate(err.Error(), 200)
	}
}
