package entities

// CacheEntry is the persisted state for one (tool, reference) pair.
type CacheEntry struct {
	ETag string `yaml:"etag,omitempty"`
	URI  string `yaml:"uri,omitempty"`
}

// CachedReference is a CacheEntry together with its key, used for listings.
type CachedReference struct {
	Tool      string
	Reference string
	Entry     CacheEntry
}
