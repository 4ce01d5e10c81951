package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// OriginalURIHeader carries the URI that started a redirect chain. It is
// stamped on every follow-up request and mirrored on the terminal response.
const OriginalURIHeader = "X-Original-URI"

// DefaultMaxRedirects bounds a redirect chain when none is configured.
const DefaultMaxRedirects = 10

// RedirectTransport follows redirects by hand so that headers such as
// Authorization and If-None-Match survive the hop, but only while the target
// stays inside the registrable domain of the first request (or an explicitly
// allowed host). A redirect to any other domain is returned unfollowed.
type RedirectTransport struct {
	Next         http.RoundTripper
	MaxRedirects int
	FollowHosts  []string
}

// RoundTrip implements http.RoundTripper.
func (t *RedirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	anchor := registrableHost(req.URL.Hostname())
	originalURI := withoutUserInfo(req.URL)
	current := req
	hops := 0

	for {
		resp, err := t.next().RoundTrip(current)
		if err != nil {
			return nil, err
		}

		if !isRedirect(resp.StatusCode) {
			return stampOriginalURI(resp, hops, originalURI), nil
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return stampOriginalURI(resp, hops, originalURI), nil
		}
		target, parseErr := current.URL.Parse(location)
		if parseErr != nil {
			//nolint:nilerr // an unparsable Location is a terminal response
			return stampOriginalURI(resp, hops, originalURI), nil
		}
		if !t.allowed(anchor, target.Hostname()) {
			logger.Debugf("Not following redirect from %s to foreign host %s", current.URL.Host, target.Host)
			return stampOriginalURI(resp, hops, originalURI), nil
		}

		hops++
		if hops > t.maxRedirects() {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: more than %d hops from %s", entities.ErrTooManyRedirects, t.maxRedirects(), originalURI)
		}

		next, buildErr := nextRequest(current, resp.StatusCode, target.String(), originalURI)
		_ = resp.Body.Close()
		if buildErr != nil {
			return nil, buildErr
		}
		logger.Debugf("Following %d redirect to %s", resp.StatusCode, next.URL.Redacted())
		current = next
	}
}

// stampOriginalURI leaves OriginalURIHeader on a terminal response only when
// this transport followed at least one hop. A value sent by the server is
// never trusted.
func stampOriginalURI(resp *http.Response, hops int, originalURI string) *http.Response {
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	if hops > 0 {
		resp.Header.Set(OriginalURIHeader, originalURI)
	} else {
		resp.Header.Del(OriginalURIHeader)
	}
	return resp
}

func (t *RedirectTransport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

func (t *RedirectTransport) maxRedirects() int {
	if t.MaxRedirects <= 0 {
		return DefaultMaxRedirects
	}
	return t.MaxRedirects
}

func (t *RedirectTransport) allowed(anchor, candidate string) bool {
	if IsWithinSubdomain(anchor, candidate) {
		return true
	}
	for _, host := range t.FollowHosts {
		if IsWithinSubdomain(host, candidate) {
			return true
		}
	}
	return false
}

// nextRequest builds the follow-up for a redirect status:
// 303 always becomes a bodiless GET, 301/302 downgrade only POST, and
// 307/308 keep both method and body.
func nextRequest(current *http.Request, status int, target, originalURI string) (*http.Request, error) {
	method := current.Method
	keepBody := true

	switch status {
	case http.StatusSeeOther:
		method = http.MethodGet
		keepBody = false
	case http.StatusMovedPermanently, http.StatusFound:
		if method == http.MethodPost {
			method = http.MethodGet
			keepBody = false
		}
	}

	var body io.Reader
	if keepBody && current.GetBody != nil {
		clone, err := current.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to clone request body: %w", err)
		}
		body = clone
	}

	next, err := http.NewRequestWithContext(current.Context(), method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build redirect request: %w", err)
	}
	if keepBody && current.GetBody != nil {
		next.GetBody = current.GetBody
		next.ContentLength = current.ContentLength
	}

	for key, values := range current.Header {
		if strings.EqualFold(key, "Host") {
			continue
		}
		next.Header[key] = append([]string(nil), values...)
	}
	next.Header.Set(OriginalURIHeader, originalURI)
	return next, nil
}

// bufferBody makes a streaming body replayable so 307/308 hops can resend it.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

// withoutUserInfo renders u without embedded credentials so the value can
// travel in headers and be persisted.
func withoutUserInfo(u *url.URL) string {
	clean := *u
	clean.User = nil
	return clean.String()
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// registrableHost returns the last two labels of host ("api.github.com"
// becomes "github.com"). Hosts with fewer labels are returned as-is.
func registrableHost(host string) string {
	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 { //nolint:mnd // two labels form a registrable domain
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// IsWithinSubdomain reports whether candidate equals base or is a
// dot-delimited subdomain of it, ignoring case and trailing dots.
func IsWithinSubdomain(base, candidate string) bool {
	base = strings.ToLower(strings.TrimSuffix(base, "."))
	candidate = strings.ToLower(strings.TrimSuffix(candidate, "."))
	if base == "" || candidate == "" {
		return false
	}
	return candidate == base || strings.HasSuffix(candidate, "."+base)
}
