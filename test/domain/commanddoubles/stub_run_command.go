//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/runref/internal/domain/commands"
)

// StubRunCommand is a stub implementation of commands.Run.
type StubRunCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *commands.RunResult
	LastOpts         commands.RunOptions
	LastCtx          context.Context
}

var _ commands.Run = (*StubRunCommand)(nil)

func (s *StubRunCommand) Execute(
	ctx context.Context,
	opts commands.RunOptions,
) (*commands.RunResult, error) {
	s.ExecuteCallCount++
	s.LastCtx = ctx
	s.LastOpts = opts
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	if s.Result == nil {
		return &commands.RunResult{}, nil
	}
	return s.Result, nil
}
