//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/runref/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ReferenceBuilder helps create test references with a fluent interface.
type ReferenceBuilder struct {
	*testkit.BaseBuilder
	host  string
	owner string
	repo  string
	ref   string
	path  string
}

// NewReferenceBuilder creates a new reference builder with sensible defaults.
func NewReferenceBuilder() *ReferenceBuilder {
	return &ReferenceBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		owner:       "kzu",
		repo:        "sandbox",
	}
}

// WithHost sets the hosting domain.
func (b *ReferenceBuilder) WithHost(host string) *ReferenceBuilder {
	b.host = host
	return b
}

// WithOwner sets the owner.
func (b *ReferenceBuilder) WithOwner(owner string) *ReferenceBuilder {
	b.owner = owner
	return b
}

// WithRepo sets the repository name.
func (b *ReferenceBuilder) WithRepo(repo string) *ReferenceBuilder {
	b.repo = repo
	return b
}

// WithRef sets the branch, tag or commit.
func (b *ReferenceBuilder) WithRef(ref string) *ReferenceBuilder {
	b.ref = ref
	return b
}

// WithPath sets the file path inside the archive.
func (b *ReferenceBuilder) WithPath(path string) *ReferenceBuilder {
	b.path = path
	return b
}

// Build creates the reference (satisfies testkit.Builder interface).
func (b *ReferenceBuilder) Build() interface{} {
	return b.BuildReference()
}

// BuildReference creates the reference with a concrete return type.
func (b *ReferenceBuilder) BuildReference() entities.Reference {
	return entities.Reference{
		Host:  b.host,
		Owner: b.owner,
		Repo:  b.repo,
		Ref:   b.ref,
		Path:  b.path,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ReferenceBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.host = ""
	b.owner = "kzu"
	b.repo = "sandbox"
	b.ref = ""
	b.path = ""
	return b
}

// Clone creates a deep copy of the ReferenceBuilder.
func (b *ReferenceBuilder) Clone() testkit.Builder {
	return &ReferenceBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		host:        b.host,
		owner:       b.owner,
		repo:        b.repo,
		ref:         b.ref,
		path:        b.path,
	}
}
