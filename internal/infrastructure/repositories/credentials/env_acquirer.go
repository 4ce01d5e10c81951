package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

const (
	hostGitHub      = "github.com"
	hostGist        = "gist.github.com"
	hostGitLab      = "gitlab.com"
	hostAzureDevOps = "dev.azure.com"
	hostBitbucket   = "bitbucket.org"
)

// EnvAcquirer reads tokens from the conventional CI/CLI environment
// variables of each host. Its credentials are never persisted.
type EnvAcquirer struct{}

// NewEnvAcquirer creates an EnvAcquirer.
func NewEnvAcquirer() *EnvAcquirer {
	return &EnvAcquirer{}
}

// Acquire implements repositories.CredentialAcquirer.
func (a *EnvAcquirer) Acquire(_ context.Context, request entities.CredentialRequest) (*entities.Credential, error) {
	host := strings.ToLower(request.Host)

	if host == hostBitbucket {
		username := os.Getenv("BITBUCKET_USERNAME")
		password := os.Getenv("BITBUCKET_APP_PASSWORD")
		if username == "" || password == "" {
			return nil, fmt.Errorf("no credential in environment for %s (set %s)", host, TokenEnvHint(host))
		}
		return &entities.Credential{Account: username, Secret: password, Transient: true}, nil
	}

	token := resolveTokenFromEnv(host)
	if token == "" {
		return nil, fmt.Errorf("no credential in environment for %s (set %s)", host, TokenEnvHint(host))
	}
	account := request.Account
	if account == "" {
		account = "token"
	}
	return &entities.Credential{Account: account, Secret: token, Transient: true}, nil
}

func resolveTokenFromEnv(host string) string {
	switch host {
	case hostGitHub, hostGist:
		if t := os.Getenv("GITHUB_TOKEN"); t != "" {
			return t
		}
		return os.Getenv("GH_TOKEN")
	case hostAzureDevOps:
		if t := os.Getenv("AZURE_DEVOPS_EXT_PAT"); t != "" {
			return t
		}
		return os.Getenv("SYSTEM_ACCESSTOKEN")
	case hostGitLab:
		if t := os.Getenv("GITLAB_TOKEN"); t != "" {
			return t
		}
		return os.Getenv("GL_TOKEN")
	default:
		return ""
	}
}

// TokenEnvHint names the variables consulted for host.
func TokenEnvHint(host string) string {
	switch strings.ToLower(host) {
	case hostGitHub, hostGist:
		return "GITHUB_TOKEN or GH_TOKEN"
	case hostAzureDevOps:
		return "AZURE_DEVOPS_EXT_PAT or SYSTEM_ACCESSTOKEN"
	case hostGitLab:
		return "GITLAB_TOKEN or GL_TOKEN"
	case hostBitbucket:
		return "BITBUCKET_USERNAME and BITBUCKET_APP_PASSWORD"
	default:
		return "<unknown host>"
	}
}
