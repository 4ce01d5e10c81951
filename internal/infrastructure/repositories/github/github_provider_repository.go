package github

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/httpclient"
)

const (
	providerName = "github"
	gistName     = "gist"

	// Host is the GitHub web host; it also scopes gist credentials.
	Host = "github.com"
	// GistHost serves gist archives.
	GistHost = "gist.github.com"

	tokenAccount = "x-access-token"
)

// ProviderRepository downloads archives through GitHub's /archive/ endpoint.
// The same convention serves repositories and gists, differing only in host.
type ProviderRepository struct {
	name       string
	baseURL    string
	tagAware   bool
	defaultRef string
	client     *http.Client
}

// NewProviderRepository creates the github.com provider.
func NewProviderRepository(opts repositories.ProviderOptions) repositories.ProviderRepository {
	return newProvider(opts, providerName, "https://"+Host, true)
}

// NewGistProviderRepository creates the gist.github.com provider.
func NewGistProviderRepository(opts repositories.ProviderOptions) repositories.ProviderRepository {
	return newProvider(opts, gistName, "https://"+GistHost, false)
}

func newProvider(
	opts repositories.ProviderOptions, name, baseURL string, tagAware bool,
) *ProviderRepository {
	apiClient := &http.Client{Transport: opts.Transport, Timeout: opts.Settings.Timeout}
	cascade := &credentials.Cascade{
		Host:      Host,
		Store:     opts.Store,
		Acquirer:  opts.Acquirer,
		Scopes:    credentials.OwnerRepoScopes(Host),
		Account:   tokenAccount,
		Validator: credentials.NewGitHubTokenValidator(credentials.GitHubAPIURL, apiClient),
	}

	return &ProviderRepository{
		name:       name,
		baseURL:    baseURL,
		tagAware:   tagAware,
		defaultRef: opts.Settings.DefaultRef,
		client: httpclient.NewClient(httpclient.ClientConfig{
			Base:         opts.Transport,
			Timeout:      opts.Settings.Timeout,
			MaxRedirects: opts.Settings.MaxRedirects,
			FollowHosts:  opts.Settings.FollowHosts,
			Resolver:     cascade.NewSession(),
			Scheme:       httpclient.SchemeBearer,
		}),
	}
}

func (p *ProviderRepository) Name() string { return p.name }

// Fetch implements repositories.ProviderRepository.
func (p *ProviderRepository) Fetch(ctx context.Context, ref entities.Reference) (*entities.FetchResult, error) {
	target := ref.ResolvedURI
	if target == "" {
		target = p.ArchiveURL(ref)
	}
	return httpclient.Fetch(ctx, p.client, target, ref.ETag)
}

// ArchiveURL builds the discovery URL. Semver refs go to the tag path so a
// branch with the same name cannot shadow the release.
func (p *ProviderRepository) ArchiveURL(ref entities.Reference) string {
	name := ref.RefOrDefault(p.defaultRef)
	archive := "/archive/"
	if p.tagAware && semver.IsValid(name) {
		archive = "/archive/refs/tags/"
	}
	return p.baseURL + "/" + url.PathEscape(ref.Owner) + "/" + url.PathEscape(ref.Repo) +
		archive + httpclient.EscapePath(name) + ".zip"
}
