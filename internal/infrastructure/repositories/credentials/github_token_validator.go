package credentials

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// GitHubAPIURL is the REST endpoint stored GitHub tokens are checked against.
const GitHubAPIURL = "https://api.github.com/"

// GitHubTokenValidator asks the GitHub API who owns a stored token. GitHub
// answers 401 for a revoked or expired token.
type GitHubTokenValidator struct {
	baseURL *url.URL
	client  *http.Client
}

// NewGitHubTokenValidator creates a validator for the API at apiURL, sending
// checks through base.
func NewGitHubTokenValidator(apiURL string, base *http.Client) *GitHubTokenValidator {
	if base == nil {
		base = http.DefaultClient
	}
	validator := &GitHubTokenValidator{client: base}
	if parsed, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/"); err == nil {
		validator.baseURL = parsed
	}
	return validator
}

// Expired reports true only for a definite 401. Any other outcome keeps the token.
func (v *GitHubTokenValidator) Expired(ctx context.Context, credential entities.Credential) bool {
	client := gh.NewClient(v.client).WithAuthToken(credential.Secret)
	if v.baseURL != nil {
		client.BaseURL = v.baseURL
	}

	_, resp, err := client.Users.Get(ctx, "")
	if resp == nil {
		if err != nil {
			logger.Debugf("GitHub token check failed: %v", err)
		}
		return false
	}
	return resp.StatusCode == http.StatusUnauthorized
}
