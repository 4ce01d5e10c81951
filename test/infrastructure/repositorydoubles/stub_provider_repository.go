//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations without mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"bytes"
	"context"
	"io"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// SpyProviderRepository implements repositories.ProviderRepository as a configurable spy.
type SpyProviderRepository struct {
	// --- identity ---
	ProviderName string

	// --- Fetch ---
	StatusCode  int
	ETag        string
	ResolvedURI string
	Body        []byte
	FetchErr    error

	// spy: references passed to Fetch
	FetchedRefs []entities.Reference
}

var _ repositories.ProviderRepository = (*SpyProviderRepository)(nil)

func (p *SpyProviderRepository) Name() string { return p.ProviderName }

func (p *SpyProviderRepository) Fetch(
	_ context.Context, ref entities.Reference,
) (*entities.FetchResult, error) {
	p.FetchedRefs = append(p.FetchedRefs, ref)
	if p.FetchErr != nil {
		return nil, p.FetchErr
	}

	result := &entities.FetchResult{
		StatusCode:  p.StatusCode,
		ETag:        p.ETag,
		ResolvedURI: p.ResolvedURI,
	}
	if result.Changed() {
		result.Body = io.NopCloser(bytes.NewReader(p.Body))
	}
	return result, nil
}
