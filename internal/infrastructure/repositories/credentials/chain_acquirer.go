package credentials

import (
	"context"
	"errors"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// ChainAcquirer asks each acquirer in turn and returns the first credential.
type ChainAcquirer struct {
	acquirers []repositories.CredentialAcquirer
}

// NewChainAcquirer creates a chain that consults acquirers in order.
func NewChainAcquirer(acquirers ...repositories.CredentialAcquirer) *ChainAcquirer {
	return &ChainAcquirer{acquirers: acquirers}
}

// Acquire implements repositories.CredentialAcquirer.
func (c *ChainAcquirer) Acquire(ctx context.Context, request entities.CredentialRequest) (*entities.Credential, error) {
	var errs []error
	for _, acquirer := range c.acquirers {
		credential, err := acquirer.Acquire(ctx, request)
		if err == nil && credential != nil {
			return credential, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, errors.New("no credential acquired")
	}
	return nil, errors.Join(errs...)
}
