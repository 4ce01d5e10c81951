package repositories

import "context"

// RunnerRepository executes an extracted entry file with the external runtime.
type RunnerRepository interface {
	// Available reports whether the runtime can be found.
	Available() bool

	// Clean invalidates any build output left from a previous version of entry.
	Clean(ctx context.Context, entry string) error

	// Run executes entry with args and returns the process exit code.
	Run(ctx context.Context, entry string, args []string) (int, error)
}
