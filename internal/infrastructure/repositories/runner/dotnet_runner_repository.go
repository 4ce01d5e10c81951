package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// DotnetRunnerRepository runs file-based programs with the dotnet CLI.
type DotnetRunnerRepository struct {
	command string
}

// NewDotnetRunnerRepository creates a runner for the configured runtime executable.
func NewDotnetRunnerRepository(settings *entities.Settings) *DotnetRunnerRepository {
	return &DotnetRunnerRepository{command: settings.Runtime}
}

// Available reports whether the runtime executable is on PATH.
func (r *DotnetRunnerRepository) Available() bool {
	_, err := exec.LookPath(r.command)
	return err == nil
}

// Clean removes cached build output for entry so the new sources are compiled.
func (r *DotnetRunnerRepository) Clean(ctx context.Context, entry string) error {
	cmd := exec.CommandContext(ctx, r.command, "clean", "-v:q", entry)
	cmd.Dir = filepath.Dir(entry)
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger.Debugf("%s clean output: %s", r.command, output)
		return fmt.Errorf("%s clean failed: %w", r.command, err)
	}
	return nil
}

// Run executes entry with the current process's standard streams and
// returns its exit code.
func (r *DotnetRunnerRepository) Run(ctx context.Context, entry string, args []string) (int, error) {
	cmdArgs := append([]string{"run", "-v:q", entry, "--"}, args...)
	cmd := exec.CommandContext(ctx, r.command, cmdArgs...)
	cmd.Dir = filepath.Dir(entry)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to start %s: %w", r.command, err)
	}
	return 0, nil
}
