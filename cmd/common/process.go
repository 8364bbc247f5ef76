// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/store"
)

// ResolveCredentials returns the credentials from src, or fallback when the
// source has none. A load error is returned as-is.
func ResolveCredentials(src store.CredentialSource, fallback []models.Credential, log logging.Logger) ([]models.Credential, error) {
	log = logging.OrDiscard(log)
	if src != nil {
		creds, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("error loading credentials: %w", err)
		}
		if len(creds) > 0 {
			log.Debug("Using credentials file", logging.F(logging.FieldCount, len(creds)))
			return creds, nil
		}
	}
	log.Debug("Using credentials from environment", logging.F(logging.FieldCount, len(fallback)))
	return fallback, nil
}

// PrintResult writes r to w, as indented JSON when asJSON is set.
func PrintResult(w io.Writer, r models.ImageResult, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintf(w, "%s\n  reasoning: %s\n", r.String(), r.Reasoning)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
