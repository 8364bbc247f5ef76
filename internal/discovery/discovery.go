// Package discovery picks which model to call for a credential, based on the
// models the provider lists for it and a preference order.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/stock-categorizer/internal/providererror"
)

// DefaultMaxCandidates bounds how many models an adapter falls back across.
const DefaultMaxCandidates = 3

// Lister lists the model identifiers available to a credential.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]string, error)

func (f ListerFunc) ListModels(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Preferences drive model ranking.
type Preferences struct {
	// Preferred names in priority order, matched against the full listed name
	// or its trailing path segment.
	Preferred []string
	// Keywords select a fallback model when no preferred model is listed.
	Keywords []string
	// Max caps the number of ranked candidates; 0 means DefaultMaxCandidates.
	Max int
}

// GeminiPreferences ranks Gemini vision-capable models.
var GeminiPreferences = Preferences{
	Preferred: []string{
		"gemini-1.5-flash-latest",
		"gemini-1.5-flash",
		"gemini-1.5-pro-latest",
		"gemini-1.5-pro",
		"gemini-pro-vision",
	},
	Keywords: []string{"vision", "flash", "pro"},
}

// OpenAIPreferences ranks OpenAI vision-capable chat models.
var OpenAIPreferences = Preferences{
	Preferred: []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
		"gpt-4-turbo",
	},
	Keywords: []string{"vision", "4o"},
}

// Select returns the single best model for the credential behind lister.
func Select(ctx context.Context, lister Lister, prefs Preferences) (string, error) {
	candidates, err := Candidates(ctx, lister, prefs)
	if err != nil {
		return "", err
	}
	return candidates[0], nil
}

// Candidates lists models and ranks them. A listing failure or an empty list
// is an error; there is no silent default model.
func Candidates(ctx context.Context, lister Lister, prefs Preferences) ([]string, error) {
	names, err := lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ranked := Rank(names, prefs)
	if len(ranked) == 0 {
		return nil, providererror.ErrNoModels
	}
	return ranked, nil
}

// Rank orders the listed names: available preferred models first, then
// models containing a keyword, and the first listed model when nothing else
// matched. Results are trailing path segments ("models/gemini-1.5-flash"
// becomes "gemini-1.5-flash"), deduplicated and capped at prefs.Max.
func Rank(names []string, prefs Preferences) []string {
	limit := prefs.Max
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}

	short := make([]string, 0, len(names))
	for _, n := range names {
		if s := ShortName(n); s != "" {
			short = append(short, s)
		}
	}
	if len(short) == 0 {
		return nil
	}

	var ranked []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] && len(ranked) < limit {
			seen[name] = true
			ranked = append(ranked, name)
		}
	}

	for _, pref := range prefs.Preferred {
		for _, s := range short {
			if s == pref {
				add(s)
				break
			}
		}
	}

	for _, s := range short {
		if containsAny(strings.ToLower(s), prefs.Keywords) {
			add(s)
		}
	}

	if len(ranked) == 0 {
		add(short[0])
	}
	return ranked
}

// ShortName returns the trailing path segment of a model identifier.
func ShortName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
