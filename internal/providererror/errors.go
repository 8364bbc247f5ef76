// Package providererror defines the error types raised while talking to
// image classification providers.
package providererror

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrNoModels is returned by discovery when a provider lists no models.
var ErrNoModels = errors.New("no models available for this key")

// ErrNoCredentials is returned when a caller supplies no usable credential.
var ErrNoCredentials = errors.New("no valid API keys provided or supported")

// ProviderError is a failed call to one provider model or endpoint.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	Msg        string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API Error (%d)", e.Provider, e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s request failed", e.Provider)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the provider rejected the credential itself. An auth
// failure makes further models of the same provider pointless.
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsAuth reports whether err wraps a ProviderError with an auth status.
func IsAuth(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.IsAuth()
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 if none is attached.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// CredentialFormatError is a secret that cannot be used as given, such as an
// Imagga secret without the key:secret separator.
type CredentialFormatError struct {
	Provider string
	Reason   string
}

func (e *CredentialFormatError) Error() string {
	return fmt.Sprintf("invalid %s credential: %s", e.Provider, e.Reason)
}

// DiscoveryError is a failure to find a usable model for a credential.
type DiscoveryError struct {
	Provider string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("%s model discovery failed: %v", e.Provider, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every usable credential failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	msg := "unknown error"
	if e.Last != nil {
		msg = e.Last.Error()
	}
	return "all API keys failed. Last error: " + msg
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Truncate shortens a provider response body to at most max bytes for
// inclusion in a message, never splitting a UTF-8 sequence.
func Truncate(body string, max int) string {
	if max <= 0 || len(body) <= max {
		return body
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
