//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// StubCredentialAcquirer implements repositories.CredentialAcquirer with a canned answer.
type StubCredentialAcquirer struct {
	Credential *entities.Credential
	Err        error

	CallCount   int
	LastRequest entities.CredentialRequest
}

var _ repositories.CredentialAcquirer = (*StubCredentialAcquirer)(nil)

func (a *StubCredentialAcquirer) Acquire(
	_ context.Context, request entities.CredentialRequest,
) (*entities.Credential, error) {
	a.CallCount++
	a.LastRequest = request
	return a.Credential, a.Err
}
