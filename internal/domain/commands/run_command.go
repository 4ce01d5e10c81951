package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/runref/internal/infrastructure/repositories"
)

const (
	// ToolRun keys cache entries written by the root command.
	ToolRun = "runref"
	// ToolGist keys cache entries written by the gist command.
	ToolGist = "gist"
)

// Run is the interface for the run command.
type Run interface {
	Execute(ctx context.Context, opts RunOptions) (*RunResult, error)
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	Reference entities.Reference
	ToolName  string
	Args      []string
}

// RunResult describes what a run did.
type RunResult struct {
	Destination string
	EntryFile   string
	Updated     bool
	ExitCode    int
}

// RunCommand orchestrates one reference:
// cache lookup -> conditional fetch -> extract if changed -> locate entry -> run.
type RunCommand struct {
	settings          *entities.Settings
	providerRegistry  *infraRepos.ProviderRegistry
	cacheRepository   repositories.CacheRepository
	archiveRepository repositories.ArchiveRepository
	runnerRepository  repositories.RunnerRepository
}

// NewRunCommand creates a new RunCommand.
func NewRunCommand(
	settings *entities.Settings,
	providerRegistry *infraRepos.ProviderRegistry,
	cacheRepository repositories.CacheRepository,
	archiveRepository repositories.ArchiveRepository,
	runnerRepository repositories.RunnerRepository,
) *RunCommand {
	return &RunCommand{
		settings:          settings,
		providerRegistry:  providerRegistry,
		cacheRepository:   cacheRepository,
		archiveRepository: archiveRepository,
		runnerRepository:  runnerRepository,
	}
}

// Execute prepares the reference and hands the entry file to the runtime.
func (it *RunCommand) Execute(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if !it.runnerRepository.Available() {
		return nil, fmt.Errorf(
			"%w: %q is not installed or not on PATH", entities.ErrRuntimeNotFound, it.settings.Runtime,
		)
	}

	result, err := it.Prepare(ctx, opts.Reference, opts.ToolName)
	if err != nil {
		return nil, err
	}

	if result.Updated {
		if cleanErr := it.runnerRepository.Clean(ctx, result.EntryFile); cleanErr != nil {
			logger.Warnf("Could not clean previous build output: %v", cleanErr)
		}
	}

	logger.Debugf("Running %s", result.EntryFile)
	code, err := it.runnerRepository.Run(ctx, result.EntryFile, opts.Args)
	result.ExitCode = code
	return result, err
}

// Prepare makes sure the extracted tree for ref is current and returns the
// entry file to run. The cache is written only after a changed archive was
// extracted successfully.
func (it *RunCommand) Prepare(ctx context.Context, ref entities.Reference, tool string) (*RunResult, error) {
	key := ref.String()
	destination := ref.Directory(it.settings.WorkspaceDir, it.settings.DefaultRef)

	ref = it.attachCached(ref, tool, key, destination)

	provider, err := it.providerRegistry.Get(ref.Host)
	if err != nil {
		return nil, err
	}

	logger.Infof("Fetching %s from %s", key, provider.Name())
	fetched, err := provider.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer fetched.Close()

	result := &RunResult{Destination: destination}
	switch {
	case fetched.NotModified():
		logger.Infof("%s is up to date", key)
	case fetched.Changed():
		if extractErr := it.archiveRepository.Extract(fetched.Body, destination); extractErr != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", key, extractErr)
		}
		entry := entities.CacheEntry{ETag: fetched.ETag, URI: fetched.ResolvedURI}
		if setErr := it.cacheRepository.Set(tool, key, entry); setErr != nil {
			logger.Warnf("Could not update cache for %s: %v", key, setErr)
		}
		result.Updated = true
		logger.Infof("Extracted %s to %s", key, destination)
	default:
		return nil, fmt.Errorf("%w: %s (status %d)", entities.ErrReferenceNotFound, key, fetched.StatusCode)
	}

	entryFile, err := it.archiveRepository.Locate(
		destination, ref.Path, it.settings.EntryFile, it.settings.SourceExtension,
	)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, key)
	}
	result.EntryFile = entryFile
	return result, nil
}

// attachCached adds the cached ETag (only when the extracted tree is still
// there to be validated) and the cached archive URI.
func (it *RunCommand) attachCached(ref entities.Reference, tool, key, destination string) entities.Reference {
	cached, found, err := it.cacheRepository.Get(tool, key)
	if err != nil {
		logger.Warnf("Ignoring unreadable cache: %v", err)
		return ref
	}
	if !found {
		return ref
	}

	if cached.ETag != "" && dirExists(destination) {
		ref = ref.WithETag(entities.NormalizeETag(cached.ETag))
	}
	if cached.URI != "" {
		if ref.ServesURI(cached.URI) {
			ref = ref.WithResolvedURI(cached.URI)
		} else {
			logger.Warnf("Ignoring cached URI outside %s for %s", ref.HostOrDefault(), key)
		}
	}
	return ref
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
