package entities

import (
	"io"
	"net/http"
)

// FetchResult is the outcome of a provider fetch. Body is nil unless the
// status is a success, and the caller must close it.
type FetchResult struct {
	StatusCode  int
	ETag        string
	ResolvedURI string
	Body        io.ReadCloser
}

// NotModified reports whether the server confirmed the cached copy.
func (r *FetchResult) NotModified() bool {
	return r.StatusCode == http.StatusNotModified
}

// Changed reports whether a new archive body is available.
func (r *FetchResult) Changed() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Close releases the body, if any.
func (r *FetchResult) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
