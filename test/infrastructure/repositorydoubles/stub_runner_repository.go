//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// StubRunnerRepository implements repositories.RunnerRepository without spawning processes.
type StubRunnerRepository struct {
	Missing  bool
	CleanErr error
	ExitCode int
	RunErr   error

	CleanedEntries []string
	RanEntries     []string
	LastArgs       []string
}

var _ repositories.RunnerRepository = (*StubRunnerRepository)(nil)

func (r *StubRunnerRepository) Available() bool { return !r.Missing }

func (r *StubRunnerRepository) Clean(_ context.Context, entry string) error {
	r.CleanedEntries = append(r.CleanedEntries, entry)
	return r.CleanErr
}

func (r *StubRunnerRepository) Run(_ context.Context, entry string, args []string) (int, error) {
	r.RanEntries = append(r.RanEntries, entry)
	r.LastArgs = args
	return r.ExitCode, r.RunErr
}
