package entities

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultHost is the hosting domain implied when a reference omits one.
const DefaultHost = "github.com"

// ReferenceFormat is the grammar echoed back to the user on parse failures.
const ReferenceFormat = "[host/]owner/repo[@ref][:path]"

// referencePattern is anchored on both ends so a trailing space or an empty
// path after ':' makes the whole input invalid.
var referencePattern = regexp.MustCompile(
	`^(?:(?P<host>[A-Za-z0-9.-]+\.[A-Za-z]{2,})/)?` +
		`(?P<owner>[A-Za-z0-9](?:-?[A-Za-z0-9]){0,38})/` +
		`(?P<repo>[A-Za-z0-9._-]{1,100})` +
		`(?:@(?P<ref>[^:\s]+))?` +
		`(?::(?P<path>.+))?$`,
)

// Reference identifies a repository (or gist) archive at a given ref, plus an
// optional file inside it. ETag and ResolvedURI are attached per fetch and are
// not part of the canonical form.
type Reference struct {
	Host  string
	Owner string
	Repo  string
	Ref   string
	Path  string

	ETag        string
	ResolvedURI string
}

// ParseReference parses text of the form [host/]owner/repo[@ref][:path].
// Case is preserved exactly.
func ParseReference(text string) (Reference, error) {
	match := referencePattern.FindStringSubmatch(text)
	if match == nil {
		return Reference{}, fmt.Errorf(
			"%w '%s': expected format '%s'", ErrInvalidReference, text, ReferenceFormat,
		)
	}

	groups := make(map[string]string, len(match))
	for i, name := range referencePattern.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}

	return Reference{
		Host:  groups["host"],
		Owner: groups["owner"],
		Repo:  groups["repo"],
		Ref:   groups["ref"],
		Path:  groups["path"],
	}, nil
}

// String returns the canonical form, which is also the cache key.
func (r Reference) String() string {
	var sb strings.Builder
	if r.Host != "" {
		sb.WriteString(r.Host)
		sb.WriteByte('/')
	}
	sb.WriteString(r.Owner)
	sb.WriteByte('/')
	sb.WriteString(r.Repo)
	if r.Ref != "" {
		sb.WriteByte('@')
		sb.WriteString(r.Ref)
	}
	if r.Path != "" {
		sb.WriteByte(':')
		sb.WriteString(r.Path)
	}
	return sb.String()
}

// HostOrDefault returns the lower-cased host, falling back to DefaultHost.
func (r Reference) HostOrDefault() string {
	if r.Host == "" {
		return DefaultHost
	}
	return strings.ToLower(strings.TrimSuffix(r.Host, "."))
}

// RefOrDefault returns the ref, or fallback when none was given.
func (r Reference) RefOrDefault(fallback string) string {
	if r.Ref == "" {
		return fallback
	}
	return r.Ref
}

// WithETag returns a copy carrying the given conditional-request token.
func (r Reference) WithETag(etag string) Reference {
	r.ETag = etag
	return r
}

// WithResolvedURI returns a copy carrying a previously resolved archive URI.
func (r Reference) WithResolvedURI(uri string) Reference {
	r.ResolvedURI = uri
	return r
}

// ServesURI reports whether raw is an absolute http(s) URI on the
// reference's host or one of its subdomains.
func (r Reference) ServesURI(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return false
	}
	host := r.HostOrDefault()
	candidate := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	return candidate == host || strings.HasSuffix(candidate, "."+host)
}

// Directory returns the deterministic extraction directory under root.
// Each component is escaped so a ref such as "feature/x" or ".." cannot
// change the depth of the resulting path.
func (r Reference) Directory(root, defaultRef string) string {
	return filepath.Join(
		root,
		pathSegment(r.HostOrDefault()),
		pathSegment(r.Owner),
		pathSegment(r.Repo),
		pathSegment(r.RefOrDefault(defaultRef)),
	)
}

func pathSegment(value string) string {
	escaped := url.PathEscape(value)
	if escaped == "." || escaped == ".." {
		return "_" + escaped
	}
	return escaped
}

// NormalizeETag closes a weak validator that lost its trailing quote when it
// was persisted (W/"abc becomes W/"abc").
func NormalizeETag(etag string) string {
	if len(etag) >= 3 && strings.EqualFold(etag[:3], `W/"`) && !strings.HasSuffix(etag, `"`) {
		return etag + `"`
	}
	return etag
}
