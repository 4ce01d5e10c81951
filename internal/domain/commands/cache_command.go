package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// Cache is the interface for inspecting and evicting cached references.
type Cache interface {
	List(ctx context.Context) ([]entities.CachedReference, error)
	Clear(ctx context.Context, opts CacheClearOptions) (int, error)
}

// CacheClearOptions selects what to evict. Empty fields match everything.
type CacheClearOptions struct {
	Tool      string
	Reference string
}

// CacheCommand manages the conditional-fetch cache and the extracted trees it describes.
type CacheCommand struct {
	settings        *entities.Settings
	cacheRepository repositories.CacheRepository
}

// NewCacheCommand creates a new CacheCommand.
func NewCacheCommand(settings *entities.Settings, cacheRepository repositories.CacheRepository) *CacheCommand {
	return &CacheCommand{settings: settings, cacheRepository: cacheRepository}
}

// List returns every cached reference.
func (it *CacheCommand) List(_ context.Context) ([]entities.CachedReference, error) {
	return it.cacheRepository.List()
}

// Clear removes matching entries together with their extraction directories
// and returns how many entries were removed.
func (it *CacheCommand) Clear(ctx context.Context, opts CacheClearOptions) (int, error) {
	cached, err := it.cacheRepository.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, item := range cached {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if opts.Tool != "" && item.Tool != opts.Tool {
			continue
		}
		if opts.Reference != "" && item.Reference != opts.Reference {
			continue
		}

		if deleteErr := it.cacheRepository.Delete(item.Tool, item.Reference); deleteErr != nil {
			return removed, fmt.Errorf("failed to evict %s: %w", item.Reference, deleteErr)
		}
		removed++

		ref, parseErr := entities.ParseReference(item.Reference)
		if parseErr != nil {
			logger.Warnf("Skipping directory cleanup for %q: %v", item.Reference, parseErr)
			continue
		}
		destination := ref.Directory(it.settings.WorkspaceDir, it.settings.DefaultRef)
		if rmErr := os.RemoveAll(destination); rmErr != nil {
			logger.Warnf("Could not remove %s: %v", destination, rmErr)
		}
	}
	return removed, nil
}
