package gitlab

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/httpclient"
)

const (
	providerName = "gitlab"

	// Host is the GitLab SaaS host.
	Host = "gitlab.com"

	tokenAccount = "PersonalAccessToken"
	projectsPath = "api/v4/projects"
)

// ProviderRepository downloads archives through the GitLab REST API.
type ProviderRepository struct {
	baseURL    string
	defaultRef string
	client     *http.Client
}

// NewProviderRepository creates the gitlab.com provider. Stored tokens are
// checked against the GitLab API before use.
func NewProviderRepository(opts repositories.ProviderOptions) repositories.ProviderRepository {
	baseURL := "https://" + Host
	apiClient := &http.Client{Transport: opts.Transport, Timeout: opts.Settings.Timeout}

	cascade := &credentials.Cascade{
		Host:      Host,
		Store:     opts.Store,
		Acquirer:  opts.Acquirer,
		Scopes:    projectScopes,
		Account:   tokenAccount,
		Validator: credentials.NewGitLabTokenValidator(baseURL, apiClient),
	}

	return &ProviderRepository{
		baseURL:    baseURL,
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

func (p *ProviderRepository) Name() string { return providerName }

// Fetch implements repositories.ProviderRepository.
func (p *ProviderRepository) Fetch(ctx context.Context, ref entities.Reference) (*entities.FetchResult, error) {
	target := ref.ResolvedURI
	if target == "" {
		target = p.ArchiveURL(ref)
	}
	return httpclient.Fetch(ctx, p.client, target, ref.ETag)
}

// ArchiveURL addresses the project by its URL-encoded full path.
func (p *ProviderRepository) ArchiveURL(ref entities.Reference) string {
	project := url.PathEscape(ref.Owner + "/" + ref.Repo)
	query := url.Values{"sha": []string{ref.RefOrDefault(p.defaultRef)}}
	return p.baseURL + "/" + projectsPath + "/" + project + "/repository/archive.zip?" + query.Encode()
}

// projectScopes recovers owner and repo from either an API URL, where the
// project path is one escaped segment, or a web URL such as a cached
// /{owner}/{repo}/-/archive/... location.
func projectScopes(target *url.URL) []string {
	if target == nil {
		return credentials.ScopeURLs(Host, "", "")
	}

	escaped := strings.Trim(target.EscapedPath(), "/")
	if rest, ok := strings.CutPrefix(escaped, projectsPath+"/"); ok {
		segment, _, _ := strings.Cut(rest, "/")
		if project, err := url.PathUnescape(segment); err == nil {
			if slash := strings.LastIndex(project, "/"); slash > 0 {
				return credentials.ScopeURLs(Host, project[:slash], project[slash+1:])
			}
			return credentials.ScopeURLs(Host, project, "")
		}
	}

	return credentials.OwnerRepoScopes(Host)(target)
}
