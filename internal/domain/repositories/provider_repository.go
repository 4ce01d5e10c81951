package repositories

import (
	"context"
	"net/http"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// ProviderRepository abstracts one hosting convention for archive download
// (GitHub, GitLab, Azure DevOps, etc.). Each instance owns its own decorator
// stack, so it must not be shared between concurrent fetches.
type ProviderRepository interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// Fetch downloads the archive for ref, sending ref.ETag as If-None-Match
	// and going straight to ref.ResolvedURI when it is set.
	Fetch(ctx context.Context, ref entities.Reference) (*entities.FetchResult, error)
}

// ProviderOptions carries the collaborators every provider stack is built from.
type ProviderOptions struct {
	Settings  *entities.Settings
	Store     CredentialStore
	Acquirer  CredentialAcquirer
	Transport http.RoundTripper
}
