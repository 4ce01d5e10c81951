//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"archive/zip"
	"bytes"

	testkit "github.com/rios0rios0/testkit/pkg/test"
)

type zipEntry struct {
	name    string
	content string
}

// ZipArchiveBuilder assembles in-memory zip archives shaped like provider downloads.
type ZipArchiveBuilder struct {
	*testkit.BaseBuilder
	entries []zipEntry
}

// NewZipArchiveBuilder creates an empty archive builder.
func NewZipArchiveBuilder() *ZipArchiveBuilder {
	return &ZipArchiveBuilder{BaseBuilder: testkit.NewBaseBuilder()}
}

// WithFile adds a file entry; names use forward slashes.
func (b *ZipArchiveBuilder) WithFile(name, content string) *ZipArchiveBuilder {
	b.entries = append(b.entries, zipEntry{name: name, content: content})
	return b
}

// WithDirectory adds an explicit directory entry.
func (b *ZipArchiveBuilder) WithDirectory(name string) *ZipArchiveBuilder {
	b.entries = append(b.entries, zipEntry{name: name + "/"})
	return b
}

// Build creates the archive (satisfies testkit.Builder interface).
func (b *ZipArchiveBuilder) Build() interface{} {
	return b.BuildBytes()
}

// BuildBytes returns the encoded archive.
func (b *ZipArchiveBuilder) BuildBytes() []byte {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, entry := range b.entries {
		w, err := writer.Create(entry.name)
		if err != nil {
			panic(err)
		}
		if entry.content != "" {
			if _, err = w.Write([]byte(entry.content)); err != nil {
				panic(err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Reset clears the builder state, allowing it to be reused.
func (b *ZipArchiveBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.entries = nil
	return b
}

// Clone creates a deep copy of the ZipArchiveBuilder.
func (b *ZipArchiveBuilder) Clone() testkit.Builder {
	return &ZipArchiveBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		entries:     append([]zipEntry(nil), b.entries...),
	}
}
