package repositories

import "io"

// ArchiveRepository unpacks downloaded archives and finds the file to run in them.
type ArchiveRepository interface {
	// Extract replaces destination with the contents of the zip read from body.
	Extract(body io.Reader, destination string) error

	// Locate returns the absolute path of the entry file inside destination.
	// A non-empty path must exist; otherwise defaultName is tried, then the
	// first top-level file with the given extension.
	Locate(destination, path, defaultName, extension string) (string, error)
}
