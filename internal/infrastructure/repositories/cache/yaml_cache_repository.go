package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// document is the on-disk layout: tool name, then canonical reference.
type document map[string]map[string]entities.CacheEntry

// YAMLCacheRepository keeps conditional-fetch state in a single YAML file.
// Writes replace the file atomically; concurrent runs are last-writer-wins.
type YAMLCacheRepository struct {
	path string
}

// NewYAMLCacheRepository creates a repository backed by the configured cache file.
func NewYAMLCacheRepository(settings *entities.Settings) *YAMLCacheRepository {
	return &YAMLCacheRepository{path: settings.CacheFile}
}

// Get returns the entry for (tool, reference) and whether it exists.
func (r *YAMLCacheRepository) Get(tool, reference string) (entities.CacheEntry, bool, error) {
	doc, err := r.load()
	if err != nil {
		return entities.CacheEntry{}, false, err
	}
	entry, ok := doc[tool][reference]
	return entry, ok, nil
}

// Set stores entry for (tool, reference).
func (r *YAMLCacheRepository) Set(tool, reference string, entry entities.CacheEntry) error {
	doc, err := r.load()
	if err != nil {
		return err
	}
	if doc[tool] == nil {
		doc[tool] = make(map[string]entities.CacheEntry)
	}
	doc[tool][reference] = entry
	return r.save(doc)
}

// Delete removes the entry for (tool, reference), if any.
func (r *YAMLCacheRepository) Delete(tool, reference string) error {
	doc, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := doc[tool][reference]; !ok {
		return nil
	}
	delete(doc[tool], reference)
	if len(doc[tool]) == 0 {
		delete(doc, tool)
	}
	return r.save(doc)
}

// List returns every entry ordered by tool and reference.
func (r *YAMLCacheRepository) List() ([]entities.CachedReference, error) {
	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	var listed []entities.CachedReference
	for tool, entries := range doc {
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

func (r *YAMLCacheRepository) load() (document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(document), nil
		}
		return nil, fmt.Errorf("failed to read cache file %q: %w", r.path, err)
	}

	doc := make(document)
	if unmarshalErr := yaml.Unmarshal(data, &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse cache file %q: %w", r.path, unmarshalErr)
	}
	return doc, nil
}

func (r *YAMLCacheRepository) save(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(r.path)
	if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
		return fmt.Errorf("failed to create cache directory: %w", mkErr)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, writeErr := tmp.Write(data); writeErr != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return fmt.Errorf("failed to write cache: %w", closeErr)
	}
	if renameErr := os.Rename(tmpPath, r.path); renameErr != nil {
		return fmt.Errorf("failed to replace cache file: %w", renameErr)
	}
	return nil
}
