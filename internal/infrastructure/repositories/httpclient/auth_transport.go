package httpclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// AuthScheme selects how a credential is attached to the retry request.
type AuthScheme int

const (
	// SchemeBearer sends "Authorization: Bearer <secret>" (GitHub, GitLab).
	SchemeBearer AuthScheme = iota
	// SchemeBasicToken sends Basic auth with an empty user and the secret as
	// password (Azure DevOps personal access tokens).
	SchemeBasicToken
	// SchemeUserInfo embeds account:secret in the URL and sends the matching
	// Basic header (Bitbucket app passwords).
	SchemeUserInfo
)

// CredentialResolver yields the credential to use for a target, or nil.
type CredentialResolver interface {
	Resolve(ctx context.Context, target *url.URL) *entities.Credential
}

// AuthTransport sends each request anonymously first and, when the response
// is a denial, retries exactly once with a credential. Whatever the retry
// returns is final.
type AuthTransport struct {
	Next     http.RoundTripper
	Resolver CredentialResolver
	Scheme   AuthScheme
	// Denials lists the statuses that trigger the retry; defaults to 403 and 404.
	Denials []int
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	resp, err := t.next().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !t.isDenial(resp.StatusCode) || t.Resolver == nil {
		return resp, nil
	}

	credential := t.Resolver.Resolve(req.Context(), req.URL)
	if credential == nil {
		logger.Debugf("No credential available for %s, keeping status %d", req.URL.Host, resp.StatusCode)
		return resp, nil
	}

	retry, buildErr := t.retryRequest(req, credential)
	if buildErr != nil {
		return resp, nil //nolint:nilerr // the original denial is still a valid answer
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()

	logger.Debugf("Retrying %s with credentials after status %d", req.URL.Redacted(), resp.StatusCode)
	return t.next().RoundTrip(retry)
}

const drainLimit = 64 << 10

func (t *AuthTransport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

func (t *AuthTransport) isDenial(status int) bool {
	denials := t.Denials
	if len(denials) == 0 {
		denials = []int{http.StatusForbidden, http.StatusNotFound}
	}
	for _, denial := range denials {
		if status == denial {
			return true
		}
	}
	return false
}

func (t *AuthTransport) retryRequest(req *http.Request, credential *entities.Credential) (*http.Request, error) {
	var body io.Reader
	if req.GetBody != nil {
		clone, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to clone request body: %w", err)
		}
		body = clone
	}

	target := *req.URL
	retry, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build retry request: %w", err)
	}
	retry.GetBody = req.GetBody
	retry.ContentLength = req.ContentLength

	for key, values := range req.Header {
		retry.Header[key] = append([]string(nil), values...)
	}
	if etag := req.Header.Get("If-None-Match"); etag != "" {
		retry.Header.Set("If-None-Match", etag)
	}

	switch t.Scheme {
	case SchemeBearer:
		retry.Header.Set("Authorization", "Bearer "+credential.Secret)
	case SchemeBasicToken:
		retry.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+credential.Secret)))
	case SchemeUserInfo:
		retry.URL.User = url.UserPassword(credential.Account, credential.Secret)
		retry.SetBasicAuth(credential.Account, credential.Secret)
	}
	return retry, nil
}
