package credentials

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/oauth2"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// OAuthAccount is the account name GitLab OAuth logins are stored under.
const OAuthAccount = "oauth2"

// GitLabTokenValidator checks stored GitLab tokens before use. OAuth tokens
// go to the token introspection endpoint; personal access tokens are checked
// by fetching the current user.
type GitLabTokenValidator struct {
	baseURL string
	client  *http.Client
}

// NewGitLabTokenValidator creates a validator for the GitLab instance at
// baseURL, sending checks through base.
func NewGitLabTokenValidator(baseURL string, base *http.Client) *GitLabTokenValidator {
	if base == nil {
		base = http.DefaultClient
	}
	return &GitLabTokenValidator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  base,
	}
}

// Expired reports true only for a definite 401 from GitLab. Any other
// outcome, including a transport failure, keeps the token.
func (v *GitLabTokenValidator) Expired(ctx context.Context, credential entities.Credential) bool {
	if credential.Account == OAuthAccount {
		return v.introspect(ctx, credential)
	}
	return v.currentUser(ctx, credential)
}

func (v *GitLabTokenValidator) introspect(ctx context.Context, credential entities.Credential) bool {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	//nolint:exhaustruct // only the access token is known
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential.Secret}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/oauth/token/info", nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Debugf("GitLab token check failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusUnauthorized
}

func (v *GitLabTokenValidator) currentUser(ctx context.Context, credential entities.Credential) bool {
	client, err := gl.NewClient(credential.Secret, gl.WithBaseURL(v.baseURL), gl.WithHTTPClient(v.client))
	if err != nil {
		logger.Debugf("Could not create GitLab client: %v", err)
		return false
	}

	_, resp, err := client.Users.CurrentUser(gl.WithContext(ctx))
	if resp == nil {
		if err != nil {
			logger.Debugf("GitLab token check failed: %v", err)
		}
		return false
	}
	return resp.StatusCode == http.StatusUnauthorized
}
