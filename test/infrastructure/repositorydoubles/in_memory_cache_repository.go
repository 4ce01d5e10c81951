//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sort"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
)

// InMemoryCacheRepository implements repositories.CacheRepository in memory.
type InMemoryCacheRepository struct {
	Entries map[string]map[string]entities.CacheEntry
	GetErr  error
	SetErr  error

	SetCallCount int
}

var _ repositories.CacheRepository = (*InMemoryCacheRepository)(nil)

// NewInMemoryCacheRepository creates an empty cache.
func NewInMemoryCacheRepository() *InMemoryCacheRepository {
	return &InMemoryCacheRepository{Entries: make(map[string]map[string]entities.CacheEntry)}
}

// WithEntry seeds an entry and returns the cache for chaining.
func (c *InMemoryCacheRepository) WithEntry(
	tool, reference string, entry entities.CacheEntry,
) *InMemoryCacheRepository {
	if c.Entries[tool] == nil {
		c.Entries[tool] = make(map[string]entities.CacheEntry)
	}
	c.Entries[tool][reference] = entry
	return c
}

func (c *InMemoryCacheRepository) Get(tool, reference string) (entities.CacheEntry, bool, error) {
	if c.GetErr != nil {
		return entities.CacheEntry{}, false, c.GetErr
	}
	entry, ok := c.Entries[tool][reference]
	return entry, ok, nil
}

func (c *InMemoryCacheRepository) Set(tool, reference string, entry entities.CacheEntry) error {
	c.SetCallCount++
	if c.SetErr != nil {
		return c.SetErr
	}
	c.WithEntry(tool, reference, entry)
	return nil
}

func (c *InMemoryCacheRepository) Delete(tool, reference string) error {
	delete(c.Entries[tool], reference)
	return nil
}

func (c *InMemoryCacheRepository) List() ([]entities.CachedReference, error) {
	var listed []entities.CachedReference
	for tool, entries := range c.Entries {
		for reference, entry := range entries {
			listed = append(listed, entities.CachedReference{Tool: tool, Reference: reference, Entry: entry})
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		if listed[i].Tool != listed[j].Tool {
			return listed[i].Tool < listed[j].Tool
		}
		return listed[i].Reference < listed[j].Reference
	})
	return listed, nil
}
