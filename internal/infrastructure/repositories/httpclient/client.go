package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// UserAgent identifies outbound requests.
const UserAgent = "runref"

// ClientConfig describes one decorator stack: Auth over Redirect over Base.
type ClientConfig struct {
	Base         http.RoundTripper
	Timeout      time.Duration
	MaxRedirects int
	FollowHosts  []string
	Resolver     CredentialResolver
	Scheme       AuthScheme
	Denials      []int
}

// NewClient composes the decorators into an http.Client. The client itself
// never follows redirects; RedirectTransport has already decided which ones
// are safe, and anything it returned unfollowed must stay that way.
func NewClient(cfg ClientConfig) *http.Client {
	redirect := &RedirectTransport{
		Next:         cfg.Base,
		MaxRedirects: cfg.MaxRedirects,
		FollowHosts:  cfg.FollowHosts,
	}
	auth := &AuthTransport{
		Next:     redirect,
		Resolver: cfg.Resolver,
		Scheme:   cfg.Scheme,
		Denials:  cfg.Denials,
	}

	//nolint:exhaustruct // Minimal Client initialization with required fields only
	return &http.Client{
		Transport: auth,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Fetch issues a conditional GET for rawURL. The body is kept open only for
// success statuses; every other outcome is returned with its status alone.
func Fetch(ctx context.Context, client *http.Client, rawURL, etag string) (*entities.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid archive URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, entities.ErrTooManyRedirects) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entities.ErrNetwork, err)
	}

	result := &entities.FetchResult{
		StatusCode:  resp.StatusCode,
		ETag:        resp.Header.Get("ETag"),
		ResolvedURI: resolvedURI(req, resp),
	}
	if result.Changed() {
		result.Body = resp.Body
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		_ = resp.Body.Close()
	}
	return result, nil
}

// resolvedURI prefers the start of a redirect chain and otherwise uses the
// URL the final response was served for.
func resolvedURI(req *http.Request, resp *http.Response) string {
	if original := resp.Header.Get(OriginalURIHeader); original != "" {
		return original
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return withoutUserInfo(resp.Request.URL)
	}
	return withoutUserInfo(req.URL)
}

// EscapePath escapes a ref for use in a URL path, keeping '/' so refs such
// as "release/8.0" stay readable.
func EscapePath(ref string) string {
	return (&url.URL{Path: ref}).EscapedPath()
}
