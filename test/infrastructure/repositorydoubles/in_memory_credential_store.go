//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// StoredCredential records a single AddOrUpdate or Remove call.
type StoredCredential struct {
	ServiceURL string
	Account    string
	Secret     string
}

// InMemoryCredentialStore implements repositories.CredentialStore in memory.
type InMemoryCredentialStore struct {
	Secrets map[string]map[string]string

	// spy: calls in order
	LookedUp []string
	Added    []StoredCredential
	Removed  []StoredCredential
}

var _ repositories.CredentialStore = (*InMemoryCredentialStore)(nil)

// NewInMemoryCredentialStore creates an empty store.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{Secrets: make(map[string]map[string]string)}
}

// With seeds a secret and returns the store for chaining.
func (s *InMemoryCredentialStore) With(serviceURL, account, secret string) *InMemoryCredentialStore {
	if s.Secrets[serviceURL] == nil {
		s.Secrets[serviceURL] = make(map[string]string)
	}
	s.Secrets[serviceURL][account] = secret
	return s
}

func (s *InMemoryCredentialStore) GetAccounts(serviceURL string) ([]string, error) {
	s.LookedUp = append(s.LookedUp, serviceURL)
	accounts := make([]string, 0, len(s.Secrets[serviceURL]))
	for account := range s.Secrets[serviceURL] {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *InMemoryCredentialStore) Get(serviceURL, account string) (*entities.Credential, error) {
	secret, ok := s.Secrets[serviceURL][account]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	return &entities.Credential{Account: account, Secret: secret}, nil
}

func (s *InMemoryCredentialStore) AddOrUpdate(serviceURL, account, secret string) error {
	s.Added = append(s.Added, StoredCredential{ServiceURL: serviceURL, Account: account, Secret: secret})
	s.With(serviceURL, account, secret)
	return nil
}

func (s *InMemoryCredentialStore) Remove(serviceURL, account string) error {
	s.Removed = append(s.Removed, StoredCredential{ServiceURL: serviceURL, Account: account})
	delete(s.Secrets[serviceURL], account)
	return nil
}
