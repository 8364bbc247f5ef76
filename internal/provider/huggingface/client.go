package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fjacquet/stock-categorizer/internal/providererror"
)

const maxErrorBody = 200

// inferenceClient posts payloads to the Inference API.
type inferenceClient struct {
	http *http.Client
}

// postJSON sends payload as JSON and decodes the response into out.
func (c *inferenceClient) postJSON(ctx context.Context, url, secret string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.post(ctx, url, secret, "application/json", body, out)
}

// post sends a raw body and decodes the JSON response into out.
func (c *inferenceClient) post(ctx context.Context, url, secret, contentType string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-wait-for-model", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return &providererror.ProviderError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &providererror.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &providererror.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Msg:        fmt.Sprintf("Hugging Face API Error (%d): %s", resp.StatusCode, errorDetail(data)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &providererror.ProviderError{
			Provider: providerName,
			Msg:      "unexpected response: " + providererror.Truncate(string(data), maxErrorBody),
			Err:      err,
		}
	}
	return nil
}

// errorDetail prefers the "error" field of a JSON error body.
func errorDetail(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return providererror.Truncate(strings.TrimSpace(string(body)), maxErrorBody)
}
