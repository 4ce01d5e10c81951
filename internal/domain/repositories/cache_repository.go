package repositories

import "github.com/rios0rios0/runref/internal/domain/entities"

// CacheRepository persists the conditional-fetch state per (tool, reference).
type CacheRepository interface {
	Get(tool, reference string) (entities.CacheEntry, bool, error)
	Set(tool, reference string, entry entities.CacheEntry) error
	Delete(tool, reference string) error
	List() ([]entities.CachedReference, error)
}
