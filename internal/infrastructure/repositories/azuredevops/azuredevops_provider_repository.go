package azuredevops

import (
	"context"
	"net/http"
	"net/url"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/httpclient"
)

const (
	providerName = "azuredevops"

	// Host is the Azure DevOps Services host.
	Host = "dev.azure.com"

	tokenAccount = "pat"
	apiVersion   = "7.1"
)

var commitPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// ProviderRepository downloads the default repository of an Azure DevOps
// project as a zip. References map owner to organization and repo to project.
type ProviderRepository struct {
	baseURL    string
	defaultRef string
	client     *http.Client
}

// NewProviderRepository creates the dev.azure.com provider. PATs are
// organization-scoped, so lookups stop at the organization and acquired
// tokens are stored there. Anonymous requests to private projects get 401.
func NewProviderRepository(opts repositories.ProviderOptions) repositories.ProviderRepository {
	cascade := &credentials.Cascade{
		Host:         Host,
		Store:        opts.Store,
		Acquirer:     opts.Acquirer,
		Scopes:       projectScopes,
		PersistScope: organizationScope,
		Account:      tokenAccount,
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
			Scheme:       httpclient.SchemeBasicToken,
			Denials:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
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

// ArchiveURL targets the items endpoint of the project's default repository.
func (p *ProviderRepository) ArchiveURL(ref entities.Reference) string {
	version := ref.RefOrDefault(p.defaultRef)
	query := url.Values{
		"path":                          []string{"/"},
		"versionDescriptor.version":     []string{version},
		"versionDescriptor.versionType": []string{versionType(version)},
		"$format":                       []string{"zip"},
		"download":                      []string{"true"},
		"api-version":                   []string{apiVersion},
	}
	organization := url.PathEscape(ref.Owner)
	project := url.PathEscape(ref.Repo)
	return p.baseURL + "/" + organization + "/" + project + "/_apis/git/repositories/" + project +
		"/items?" + query.Encode()
}

func versionType(version string) string {
	switch {
	case commitPattern.MatchString(version):
		return "commit"
	case semver.IsValid(version):
		return "tag"
	default:
		return "branch"
	}
}

func projectScopes(target *url.URL) []string {
	scopes := credentials.OwnerRepoScopes(Host)(target)
	if len(scopes) > 1 {
		return scopes[:len(scopes)-1]
	}
	return scopes
}

func organizationScope(target *url.URL) []string {
	scopes := credentials.OwnerRepoScopes(Host)(target)
	if len(scopes) > 1 {
		return scopes[len(scopes)-2:]
	}
	return scopes
}
