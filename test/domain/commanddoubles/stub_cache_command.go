//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
)

// StubCacheCommand is a stub implementation of commands.Cache.
type StubCacheCommand struct {
	Cached  []entities.CachedReference
	ListErr error

	Removed        int
	ClearErr       error
	ClearCallCount int
	LastClearOpts  commands.CacheClearOptions
}

var _ commands.Cache = (*StubCacheCommand)(nil)

func (s *StubCacheCommand) List(_ context.Context) ([]entities.CachedReference, error) {
	return s.Cached, s.ListErr
}

func (s *StubCacheCommand) Clear(_ context.Context, opts commands.CacheClearOptions) (int, error) {
	s.ClearCallCount++
	s.LastClearOpts = opts
	return s.Removed, s.ClearErr
}
