// Package imagga classifies images with the Imagga tagging API and maps the
// tags onto the taxonomy.
package imagga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/providererror"
)

const (
	// DefaultBaseURL is the public Imagga API.
	DefaultBaseURL = "https://api.imagga.com"
	providerName   = "Imagga"
	tagLimit       = 20
)

// Adapter implements categorizer.Adapter for Imagga.
type Adapter struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// New creates the adapter. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, timeout time.Duration, logger logging.Logger) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.OrDiscard(logger),
	}
}

func (a *Adapter) ID() models.ProviderID {
	return models.ProviderImagga
}

// SplitSecret parses an Imagga "key:secret" credential.
func SplitSecret(secret string) (key, sec string, err error) {
	key, sec, ok := strings.Cut(strings.TrimSpace(secret), ":")
	if !ok || key == "" || sec == "" {
		return "", "", &providererror.CredentialFormatError{
			Provider: providerName,
			Reason:   "expected \"api_key:api_secret\"",
		}
	}
	return key, sec, nil
}

// Classify implements categorizer.Adapter. A secret without the key:secret
// form is returned as an error, since no retry can fix it.
func (a *Adapter) Classify(ctx context.Context, img *imagefile.Image, secret string) (models.ClassificationResult, error) {
	key, sec, err := SplitSecret(secret)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	labels, err := a.tags(ctx, img, key, sec)
	if err != nil {
		a.logger.WithError(err).Warn("Tagging failed", logging.F(logging.FieldProvider, providerName))
		return models.FailedResult(providerName, err), nil
	}
	return categorizer.MapLabels(labels).WithProvider(providerName), nil
}

type tagsResponse struct {
	Result struct {
		Tags []struct {
			Confidence float64           `json:"confidence"`
			Tag        map[string]string `json:"tag"`
		} `json:"tags"`
	} `json:"result"`
	Status struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"status"`
}

func (a *Adapter) tags(ctx context.Context, img *imagefile.Image, key, sec string) ([]models.Label, error) {
	form := url.Values{}
	form.Set("image_base64", img.Base64())
	form.Set("limit", fmt.Sprint(tagLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/tags", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(key, sec)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, &providererror.ProviderError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providererror.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}

	var parsed tagsResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		detail := parsed.Status.Text
		if decodeErr != nil || detail == "" {
			detail = providererror.Truncate(strings.TrimSpace(string(body)), 200)
		}
		return nil, &providererror.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Msg:        fmt.Sprintf("Imagga API Error (%d): %s", resp.StatusCode, detail),
		}
	}
	if decodeErr != nil {
		return nil, &providererror.ProviderError{Provider: providerName, Msg: "unexpected response from Imagga", Err: decodeErr}
	}

	labels := make([]models.Label, 0, len(parsed.Result.Tags))
	for _, t := range parsed.Result.Tags {
		text := t.Tag["en"]
		if text == "" {
			continue
		}
		labels = append(labels, models.Label{Text: text, Score: models.ClampConfidence(t.Confidence / 100)})
	}
	if len(labels) == 0 {
		return nil, &providererror.ProviderError{Provider: providerName, Msg: "No tags detected"}
	}
	return labels, nil
}
