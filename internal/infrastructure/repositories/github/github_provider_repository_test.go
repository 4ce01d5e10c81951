//go:build unit

package github_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/domain/repositories"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/runref/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/runref/test/infrastructure/repositorydoubles"
)

func newOptions(transport http.RoundTripper) repositories.ProviderOptions {
	return repositories.ProviderOptions{
		Settings: &entities.Settings{
			Timeout:      5 * time.Second,
			MaxRedirects: 10,
			DefaultRef:   "main",
		},
		Store:     doubles.NewInMemoryCredentialStore(),
		Acquirer:  &doubles.StubCredentialAcquirer{},
		Transport: transport,
	}
}

func TestArchiveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gist     bool
		ref      entities.Reference
		expected string
	}{
		{
			name:     "should use the default ref",
			ref:      entitybuilders.NewReferenceBuilder().BuildReference(),
			expected: "https://github.com/kzu/sandbox/archive/main.zip",
		},
		{
			name:     "should route semver refs to the tag path",
			ref:      entitybuilders.NewReferenceBuilder().WithRef("v1.2.3").BuildReference(),
			expected: "https://github.com/kzu/sandbox/archive/refs/tags/v1.2.3.zip",
		},
		{
			name:     "should keep slashes of a branch",
			ref:      entitybuilders.NewReferenceBuilder().WithRef("release/8.0").BuildReference(),
			expected: "https://github.com/kzu/sandbox/archive/release/8.0.zip",
		},
		{
			name:     "should address gists on the gist host without the tag path",
			gist:     true,
			ref:      entitybuilders.NewReferenceBuilder().WithRepo("0123abcd").WithRef("v1.0.0").BuildReference(),
			expected: "https://gist.github.com/kzu/0123abcd/archive/v1.0.0.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			var provider repositories.ProviderRepository
			if tt.gist {
				provider = github.NewGistProviderRepository(newOptions(nil))
			} else {
				provider = github.NewProviderRepository(newOptions(nil))
			}

			// when
			result := provider.(*github.ProviderRepository).ArchiveURL(tt.ref)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestProviderRepository_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("should download a public archive anonymously", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{
			doubles.Redirect(http.StatusFound, "https://codeload.github.com/kzu/sandbox/zip/refs/heads/main"),
			{StatusCode: http.StatusOK, Header: http.Header{"Etag": []string{`"v1"`}}, Body: "zip"},
		}}
		provider := github.NewProviderRepository(newOptions(stub))

		// when
		result, err := provider.Fetch(context.Background(), entitybuilders.NewReferenceBuilder().BuildReference())

		// then
		require.NoError(t, err)
		defer result.Close()
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, `"v1"`, result.ETag)
		assert.Equal(t, "https://github.com/kzu/sandbox/archive/main.zip", result.ResolvedURI)
		body, readErr := io.ReadAll(result.Body)
		require.NoError(t, readErr)
		assert.Equal(t, "zip", string(body))
		assert.Equal(t, "github", provider.Name())
	})

	t.Run("should retry a private archive with a bearer token", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{
			{StatusCode: http.StatusNotFound},
			{StatusCode: http.StatusOK, Body: `{"login":"kzu"}`},
			{StatusCode: http.StatusOK, Body: "zip"},
		}}
		opts := newOptions(stub)
		opts.Store = doubles.NewInMemoryCredentialStore().With("https://github.com/kzu", "kzu", "ghp_secret")
		provider := github.NewProviderRepository(opts)

		// when
		result, err := provider.Fetch(context.Background(), entitybuilders.NewReferenceBuilder().BuildReference())

		// then
		require.NoError(t, err)
		defer result.Close()
		assert.Equal(t, http.StatusOK, result.StatusCode)
		require.Len(t, stub.Requests, 3)
		assert.Empty(t, stub.Requests[0].Header.Get("Authorization"))
		assert.Equal(t, "api.github.com", stub.Requests[1].URL.Host)
		assert.Equal(t, "/user", stub.Requests[1].URL.Path)
		assert.Equal(t, "Bearer ghp_secret", stub.Requests[2].Header.Get("Authorization"))
	})

	t.Run("should evict a revoked token and keep the denial", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{
			{StatusCode: http.StatusNotFound},
			{StatusCode: http.StatusUnauthorized, Body: `{"message":"Bad credentials"}`},
		}}
		store := doubles.NewInMemoryCredentialStore().With("https://github.com", "kzu", "ghp_revoked")
		opts := newOptions(stub)
		opts.Store = store
		provider := github.NewProviderRepository(opts)

		// when
		result, err := provider.Fetch(context.Background(), entitybuilders.NewReferenceBuilder().BuildReference())

		// then
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
		require.Len(t, stub.Requests, 2)
		require.Len(t, store.Removed, 1)
		assert.Equal(t, "https://github.com", store.Removed[0].ServiceURL)
	})

	t.Run("should not send a stored token to a cached URI on a foreign host", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{
			{StatusCode: http.StatusNotFound},
			{StatusCode: http.StatusOK, Body: "zip"},
		}}
		store := doubles.NewInMemoryCredentialStore().With("https://github.com", "kzu", "ghp_secret")
		opts := newOptions(stub)
		opts.Store = store
		provider := github.NewProviderRepository(opts)
		ref := entitybuilders.NewReferenceBuilder().BuildReference().WithResolvedURI("https://evil.example/steal")

		// when
		result, err := provider.Fetch(context.Background(), ref)

		// then
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
		require.Len(t, stub.Requests, 1)
		assert.Empty(t, stub.Requests[0].Header.Get("Authorization"))
		assert.Empty(t, store.LookedUp)
	})

	t.Run("should not trust an original URI header on a direct response", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{{
			StatusCode: http.StatusOK,
			Header:     http.Header{"X-Original-Uri": []string{"https://evil.example/steal"}},
			Body:       "zip",
		}}}
		provider := github.NewProviderRepository(newOptions(stub))

		// when
		result, err := provider.Fetch(context.Background(), entitybuilders.NewReferenceBuilder().BuildReference())

		// then
		require.NoError(t, err)
		defer result.Close()
		assert.Equal(t, "https://github.com/kzu/sandbox/archive/main.zip", result.ResolvedURI)
	})

	t.Run("should request the cached URI with the cached etag", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{{StatusCode: http.StatusNotModified}}}
		provider := github.NewProviderRepository(newOptions(stub))
		ref := entitybuilders.NewReferenceBuilder().BuildReference().
			WithETag(`"v1"`).
			WithResolvedURI("https://github.com/kzu/sandbox/archive/refs/heads/main.zip")

		// when
		result, err := provider.Fetch(context.Background(), ref)

		// then
		require.NoError(t, err)
		assert.True(t, result.NotModified())
		require.Len(t, stub.Requests, 1)
		assert.Equal(t, "https://github.com/kzu/sandbox/archive/refs/heads/main.zip", stub.Requests[0].URL.String())
		assert.Equal(t, `"v1"`, stub.Requests[0].Header.Get("If-None-Match"))
	})

	t.Run("should report the denial when no credential can be found", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &doubles.StubRoundTripper{Responses: []doubles.StubResponse{{StatusCode: http.StatusNotFound}}}
		provider := github.NewGistProviderRepository(newOptions(stub))

		// when
		result, err := provider.Fetch(context.Background(), entitybuilders.NewReferenceBuilder().BuildReference())

		// then
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
		assert.Len(t, stub.Requests, 1)
		assert.Equal(t, "gist", provider.Name())
	})
}
