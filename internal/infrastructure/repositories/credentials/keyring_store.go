package credentials

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// accountIndex is the keyring user under which the account list of a
// service URL is kept, since the OS keyrings cannot enumerate accounts.
const accountIndex = "runref:accounts"

// KeyringStore keeps credentials in the operating system keyring, one
// keyring service per lookup URL.
type KeyringStore struct {
	namespace string
}

// NewKeyringStore creates a store whose services are prefixed by the
// configured keyring namespace.
func NewKeyringStore(settings *entities.Settings) *KeyringStore {
	return &KeyringStore{namespace: settings.KeyringService}
}

// GetAccounts lists the accounts recorded for serviceURL.
func (s *KeyringStore) GetAccounts(serviceURL string) ([]string, error) {
	raw, err := keyring.Get(s.service(serviceURL), accountIndex)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read accounts for %s: %w", serviceURL, err)
	}
	return splitAccounts(raw), nil
}

// Get returns the credential for account, or nil when none is stored.
func (s *KeyringStore) Get(serviceURL, account string) (*entities.Credential, error) {
	secret, err := keyring.Get(s.service(serviceURL), account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil //nolint:nilnil // absence is not an error
		}
		return nil, fmt.Errorf("failed to read credential for %s: %w", serviceURL, err)
	}
	return &entities.Credential{Account: account, Secret: secret}, nil
}

// AddOrUpdate stores secret and records account in the index.
func (s *KeyringStore) AddOrUpdate(serviceURL, account, secret string) error {
	service := s.service(serviceURL)
	if err := keyring.Set(service, account, secret); err != nil {
		return fmt.Errorf("failed to store credential for %s: %w", serviceURL, err)
	}

	accounts, err := s.GetAccounts(serviceURL)
	if err != nil {
		return err
	}
	if slices.Contains(accounts, account) {
		return nil
	}
	return s.writeIndex(service, append(accounts, account))
}

// Remove deletes the credential and drops account from the index.
func (s *KeyringStore) Remove(serviceURL, account string) error {
	service := s.service(serviceURL)
	if err := keyring.Delete(service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove credential for %s: %w", serviceURL, err)
	}

	accounts, err := s.GetAccounts(serviceURL)
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(accounts, func(a string) bool { return a == account })
	return s.writeIndex(service, remaining)
}

func (s *KeyringStore) writeIndex(service string, accounts []string) error {
	if len(accounts) == 0 {
		if err := keyring.Delete(service, accountIndex); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear account index: %w", err)
		}
		return nil
	}
	if err := keyring.Set(service, accountIndex, strings.Join(accounts, "\n")); err != nil {
		return fmt.Errorf("failed to write account index: %w", err)
	}
	return nil
}

func (s *KeyringStore) service(serviceURL string) string {
	if s.namespace == "" {
		return serviceURL
	}
	return s.namespace + ":" + serviceURL
}

func splitAccounts(raw string) []string {
	var accounts []string
	for _, account := range strings.Split(raw, "\n") {
		if account = strings.TrimSpace(account); account != "" {
			accounts = append(accounts, account)
		}
	}
	return accounts
}
