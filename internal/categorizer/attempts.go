package categorizer

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/stock-categorizer/internal/models"
)

// Attempt records one credential tried by the categorizer.
type Attempt struct {
	Provider models.ProviderID
	Outcome  string
	Err      error
	Elapsed  time.Duration
}

// Attempts aggregates the attempts made for one image.
type Attempts []Attempt

// Errors returns all attempt errors, prefixed with their provider.
func (a Attempts) Errors() []error {
	var errs []error
	for _, at := range a {
		if at.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", at.Provider, at.Err))
		}
	}
	return errs
}

// Summary returns a compact "provider:outcome(elapsed)" listing of all
// attempts.
func (a Attempts) Summary() string {
	parts := make([]string, 0, len(a))
	for _, at := range a {
		parts = append(parts, fmt.Sprintf("%s:%s(%dms)", at.Provider, at.Outcome, at.Elapsed.Milliseconds()))
	}
	return strings.Join(parts, ", ")
}
