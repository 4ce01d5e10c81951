package entities

import "errors"

var (
	// ErrInvalidReference is returned when a reference string does not match the grammar.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNetwork wraps transport failures, including expired deadlines.
	ErrNetwork = errors.New("network error")
	// ErrReferenceNotFound is returned when the host still denies access after the auth retry.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrTooManyRedirects aborts a fetch whose redirect chain exceeds the configured limit.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrExtraction covers corrupt archives and filesystem failures while unpacking.
	ErrExtraction = errors.New("extraction failed")
	// ErrEntryNotFound is returned when no runnable file exists in the extracted tree.
	ErrEntryNotFound = errors.New("entry file not found")
	// ErrRuntimeNotFound is returned when the execution runtime is not installed.
	ErrRuntimeNotFound = errors.New("runtime not found")
)
