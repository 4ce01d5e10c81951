package credentials

import (
	"context"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/httpclient"
)

// TokenValidator reports whether a stored credential can no longer be used.
type TokenValidator interface {
	Expired(ctx context.Context, credential entities.Credential) bool
}

// ScopeFunc maps a request target to lookup URLs, most specific first.
type ScopeFunc func(target *url.URL) []string

// Cascade resolves the credential for a host: it walks the scope URLs in the
// store, then falls back to the acquirer and persists what it obtained.
// Failures anywhere in the cascade mean "no credential", never an error.
type Cascade struct {
	Host     string
	Store    repositories.CredentialStore
	Acquirer repositories.CredentialAcquirer
	// Scopes defaults to OwnerRepoScopes(Host).
	Scopes ScopeFunc
	// PersistScope defaults to the host-global URL.
	PersistScope ScopeFunc
	// Account is passed to the acquirer as a hint.
	Account   string
	Validator TokenValidator
}

// NewSession starts a flow. Each session memoizes at most one credential.
func (c *Cascade) NewSession() *Session {
	return &Session{cascade: c}
}

// Session is the per-flow state of a Cascade. It is not safe for concurrent use.
type Session struct {
	cascade    *Cascade
	credential *entities.Credential
}

// Resolve returns the memoized credential or runs the cascade once more.
// Targets outside the cascade's host never receive a credential.
func (s *Session) Resolve(ctx context.Context, target *url.URL) *entities.Credential {
	if !s.cascade.serves(target) {
		if target != nil {
			logger.Debugf("Refusing to hand a %s credential to %s", s.cascade.Host, target.Host)
		}
		return nil
	}
	if s.credential != nil {
		return s.credential
	}
	if credential := s.cascade.resolve(ctx, target); credential != nil {
		s.credential = credential
	}
	return s.credential
}

func (c *Cascade) serves(target *url.URL) bool {
	return target != nil && httpclient.IsWithinSubdomain(c.Host, target.Hostname())
}

func (c *Cascade) resolve(ctx context.Context, target *url.URL) *entities.Credential {
	scopes := c.scopes(target)
	for _, scope := range scopes {
		if credential := c.lookup(ctx, scope); credential != nil {
			logger.Debugf("Using stored credential for %s", scope)
			return credential
		}
	}
	return c.acquire(ctx, target, scopes)
}

// lookup only accepts a scope holding exactly one account with a secret.
func (c *Cascade) lookup(ctx context.Context, scope string) *entities.Credential {
	if c.Store == nil {
		return nil
	}
	accounts, err := c.Store.GetAccounts(scope)
	if err != nil {
		logger.Debugf("Credential store lookup failed for %s: %v", scope, err)
		return nil
	}
	if len(accounts) != 1 {
		return nil
	}

	credential, err := c.Store.Get(scope, accounts[0])
	if err != nil || credential == nil || credential.Secret == "" {
		return nil
	}

	if c.Validator != nil && c.Validator.Expired(ctx, *credential) {
		logger.Debugf("Stored credential for %s has expired, removing it", scope)
		if removeErr := c.Store.Remove(scope, credential.Account); removeErr != nil {
			logger.Debugf("Failed to remove expired credential: %v", removeErr)
		}
		return nil
	}
	return credential
}

func (c *Cascade) acquire(ctx context.Context, target *url.URL, scopes []string) *entities.Credential {
	if c.Acquirer == nil {
		return nil
	}

	request := entities.CredentialRequest{
		Protocol: "https",
		Host:     c.Host,
		Account:  c.Account,
	}
	if len(scopes) > 0 {
		if scopeURL, err := url.Parse(scopes[0]); err == nil {
			request.Path = strings.Trim(scopeURL.Path, "/")
		}
	}

	credential, err := c.Acquirer.Acquire(ctx, request)
	if err != nil || credential == nil || credential.Secret == "" {
		if err != nil {
			logger.Debugf("Credential acquisition for %s failed: %v", c.Host, err)
		}
		return nil
	}

	if !credential.Transient && c.Store != nil {
		persistScope := c.persistScope(target)
		if storeErr := c.Store.AddOrUpdate(persistScope, credential.Account, credential.Secret); storeErr != nil {
			logger.Debugf("Failed to persist credential for %s: %v", persistScope, storeErr)
		}
	}
	return credential
}

func (c *Cascade) scopes(target *url.URL) []string {
	if c.Scopes != nil {
		return c.Scopes(target)
	}
	return OwnerRepoScopes(c.Host)(target)
}

func (c *Cascade) persistScope(target *url.URL) string {
	if c.PersistScope != nil {
		if scopes := c.PersistScope(target); len(scopes) > 0 {
			return scopes[0]
		}
	}
	return GlobalScope(c.Host)
}

// GlobalScope returns the host-wide lookup URL.
func GlobalScope(host string) string {
	return "https://" + host
}

// ScopeURLs builds repo, owner and host-global lookup URLs, omitting the
// levels for which a segment is missing.
func ScopeURLs(host, owner, repo string) []string {
	global := GlobalScope(host)
	switch {
	case owner != "" && repo != "":
		return []string{global + "/" + owner + "/" + repo, global + "/" + owner, global}
	case owner != "":
		return []string{global + "/" + owner, global}
	default:
		return []string{global}
	}
}

// OwnerRepoScopes reads owner and repo from the first two path segments of
// the target, which holds for every archive URL shaped /{owner}/{repo}/...
func OwnerRepoScopes(host string) ScopeFunc {
	return func(target *url.URL) []string {
		owner, repo := leadingSegments(target)
		return ScopeURLs(host, owner, repo)
	}
}

func leadingSegments(target *url.URL) (string, string) {
	if target == nil {
		return "", ""
	}
	parts := strings.Split(strings.Trim(target.Path, "/"), "/")
	switch {
	case len(parts) >= 2: //nolint:mnd // owner and repo
		return parts[0], parts[1]
	case len(parts) == 1:
		return parts[0], ""
	default:
		return "", ""
	}
}
