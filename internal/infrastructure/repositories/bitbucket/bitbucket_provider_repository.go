package bitbucket

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/httpclient"
)

const (
	providerName = "bitbucket"

	// Host is the Bitbucket Cloud host.
	Host = "bitbucket.org"
)

// ProviderRepository downloads archives through Bitbucket's /get/ endpoint
// using an app password embedded as user info.
type ProviderRepository struct {
	baseURL    string
	defaultRef string
	client     *http.Client
}

// NewProviderRepository creates the bitbucket.org provider.
func NewProviderRepository(opts repositories.ProviderOptions) repositories.ProviderRepository {
	cascade := &credentials.Cascade{
		Host:     Host,
		Store:    opts.Store,
		Acquirer: opts.Acquirer,
		Scopes:   credentials.OwnerRepoScopes(Host),
	}

	return &ProviderRepository{
		baseURL:    "https://" + Host,
		defaultRef: opts.Settings.DefaultRef,
		client: httpclient.NewClient(httpclient.ClientConfig{
			Base:         opts.Transport,
			Timeout:      opts.Settings.Timeout,
			MaxRedirects: opts.Settings.MaxRedirects,
			FollowHosts:  opts.Settings.FollowHosts,
			Resolver:     cascade.NewSession(),
			Scheme:       httpclient.SchemeUserInfo,
		}),
	}
}

func (p *ProviderRepository) Name() string { return providerName }

// Fetch implements repositories.ProviderRepository.
func (p *ProviderRepository) Fetch(ctx context.Context, ref entities.Reference) (*entities.FetchResult, error) {
	target := ref.ResolvedURI
	if target == "" {
		target = p.ArchiveURL(ref)
	}
	return httpclient.Fetch(ctx, p.client, target, ref.ETag)
}

// ArchiveURL builds https://bitbucket.org/{owner}/{repo}/get/{ref}.zip.
func (p *ProviderRepository) ArchiveURL(ref entities.Reference) string {
	return p.baseURL + "/" + url.PathEscape(ref.Owner) + "/" + url.PathEscape(ref.Repo) +
		"/get/" + httpclient.EscapePath(ref.RefOrDefault(p.defaultRef)) + ".zip"
}
