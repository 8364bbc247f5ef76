package models

import (
	"fmt"
	"strings"
)

// ProviderID identifies which adapter handles a credential. The string values
// are the provider names the upload UI sends in its apiKeys payload.
type ProviderID string

const (
	ProviderGoogleVision ProviderID = "Google Cloud Vision"
	ProviderGemini       ProviderID = "Google Gemini API"
	ProviderOpenRouter   ProviderID = "OpenRouter"
	ProviderOpenAI       ProviderID = "OpenAI"
	ProviderHuggingFace  ProviderID = "Hugging Face"
	ProviderImagga       ProviderID = "Imagga"
	ProviderLocal        ProviderID = "Local Device"
)

// AllProviders lists every known provider. Registries are expected to cover
// all of them.
func AllProviders() []ProviderID {
	return []ProviderID{
		ProviderGoogleVision,
		ProviderGemini,
		ProviderOpenRouter,
		ProviderOpenAI,
		ProviderHuggingFace,
		ProviderImagga,
		ProviderLocal,
	}
}

// ParseProviderID resolves a provider name or short alias ("gemini",
// "vision", "hf", ...) to its ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, id := range AllProviders() {
		if strings.ToLower(string(id)) == key {
			return id, nil
		}
	}
	switch key {
	case "google", "vision", "google-vision", "googlevision":
		return ProviderGoogleVision, nil
	case "gemini":
		return ProviderGemini, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "hf", "huggingface", "hugging-face":
		return ProviderHuggingFace, nil
	case "imagga":
		return ProviderImagga, nil
	case "local", "device", "local-device":
		return ProviderLocal, nil
	}
	return "", fmt.Errorf("unknown provider: %q", s)
}

// RequiresSecret reports whether the provider needs a non-blank secret.
func (p ProviderID) RequiresSecret() bool {
	return p != ProviderLocal
}

// Credential pairs a provider with the secret used to call it. Credentials are
// supplied per request and never stored by the classifier.
type Credential struct {
	Provider ProviderID `json:"provider" yaml:"provider"`
	Secret   string     `json:"key" yaml:"key"`
	Enabled  bool       `json:"enabled" yaml:"enabled"`
}

// NewCredential returns an enabled credential.
func NewCredential(provider ProviderID, secret string) Credential {
	return Credential{Provider: provider, Secret: secret, Enabled: true}
}

// Usable reports whether the orchestrator should try this credential.
func (c Credential) Usable() bool {
	if !c.Enabled {
		return false
	}
	if !c.Provider.RequiresSecret() {
		return true
	}
	return strings.TrimSpace(c.Secret) != ""
}

// MaskedSecret returns a log-safe rendering of the secret.
func (c Credential) MaskedSecret() string {
	return MaskSecret(c.Secret)
}

// MaskSecret keeps the first five and last four characters of s.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "EMPTY"
	case len(s) <= 9:
		return strings.Repeat("*", len(s))
	default:
		return s[:5] + "..." + s[len(s)-4:]
	}
}
