package store

import (
	"fjacquet/stock-categorizer/internal/models"
)

// MockCredentialStore is an in-memory CredentialSource for tests.
type MockCredentialStore struct {
	Credentials []models.Credential
	LoadError   error
	LoadCalls   int
}

// Load returns a copy of the mock credentials.
func (m *MockCredentialStore) Load() ([]models.Credential, error) {
	m.LoadCalls++
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	out := make([]models.Credential, len(m.Credentials))
	copy(out, m.Credentials)
	return out, nil
}
