// Package store loads and saves the credentials file used by the CLI.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"
	"fjacquet/stock-categorizer/internal/validation"

	"gopkg.in/yaml.v3"
)

// DefaultCredentialsFile is looked up when no file name is configured.
const DefaultCredentialsFile = "credentials.yaml"

// CredentialSource supplies the ordered credential list.
type CredentialSource interface {
	Load() ([]models.Credential, error)
}

// CredentialStore reads and writes credentials as YAML:
//
//	credentials:
//	  - provider: Google Gemini API
//	    key: AIza...
//	  - provider: local
//	    enabled: false
//
// Provider names accept the aliases understood by models.ParseProviderID.
// Entries without "enabled" are enabled.
type CredentialStore struct {
	File   string
	logger logging.Logger
}

// NewCredentialStore creates a store for file.
func NewCredentialStore(file string, logger logging.Logger) *CredentialStore {
	return &CredentialStore{File: file, logger: logging.OrDiscard(logger)}
}

type credentialsFile struct {
	Credentials []credentialEntry `yaml:"credentials"`
}

type credentialEntry struct {
	Provider string `yaml:"provider"`
	Key      string `yaml:"key,omitempty"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

// FindConfigFile looks for filename in the working directory, ./config and
// the user's ~/.config/stock-categorizer directory.
func (s *CredentialStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "stock-categorizer", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

func (s *CredentialStore) filename() string {
	if s.File == "" {
		return DefaultCredentialsFile
	}
	return s.File
}

// Load reads the credentials in file order. A missing file yields no
// credentials and no error.
func (s *CredentialStore) Load() ([]models.Credential, error) {
	log := logging.OrDiscard(s.logger)

	filePath, err := s.FindConfigFile(s.filename())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("Credentials file not found", logging.F(logging.FieldFile, s.filename()))
			return []models.Credential{}, nil
		}
		return nil, fmt.Errorf("error resolving credentials file: %w", err)
	}

	if info, statErr := os.Stat(filePath); statErr == nil {
		if permErr := validation.IsValidFilePermissions(info.Mode().Perm()); permErr != nil {
			log.WithError(permErr).Warn("Credentials file is readable by others", logging.F(logging.FieldFile, filePath))
		}
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %w", err)
	}

	var parsed credentialsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing credentials file %s: %w", filePath, err)
	}

	creds := make([]models.Credential, 0, len(parsed.Credentials))
	for i, entry := range parsed.Credentials {
		id, err := models.ParseProviderID(entry.Provider)
		if err != nil {
			return nil, fmt.Errorf("credentials entry %d: %w", i+1, err)
		}
		cred := models.NewCredential(id, strings.TrimSpace(entry.Key))
		if entry.Enabled != nil {
			cred.Enabled = *entry.Enabled
		}
		creds = append(creds, cred)
	}

	log.Debug("Loaded credentials",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(creds)))
	return creds, nil
}

// Save writes creds to the configured file, creating its directory. The file
// is readable by the owner only.
func (s *CredentialStore) Save(creds []models.Credential) error {
	filePath := s.filename()
	if found, err := s.FindConfigFile(filePath); err == nil {
		filePath = found
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	out := credentialsFile{Credentials: make([]credentialEntry, 0, len(creds))}
	for _, c := range creds {
		enabled := c.Enabled
		out.Credentials = append(out.Credentials, credentialEntry{
			Provider: string(c.Provider),
			Key:      c.Secret,
			Enabled:  &enabled,
		})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("error marshaling credentials: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing credentials: %w", err)
	}

	logging.OrDiscard(s.logger).Debug("Saved credentials",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(creds)))
	return nil
}
