package repositories

import (
	"context"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// CredentialStore is the persistent secret store, keyed by service URL and account.
type CredentialStore interface {
	GetAccounts(serviceURL string) ([]string, error)
	Get(serviceURL, account string) (*entities.Credential, error)
	AddOrUpdate(serviceURL, account, secret string) error
	Remove(serviceURL, account string) error
}

// CredentialAcquirer obtains a new credential, possibly by asking the user.
// It may block and it may fail.
type CredentialAcquirer interface {
	Acquire(ctx context.Context, request entities.CredentialRequest) (*entities.Credential, error)
}
