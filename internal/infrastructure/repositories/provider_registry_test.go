//go:build unit

package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/runref/internal/domain/entities"
	domainRepos "github.com/rios0rios0/runref/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/runref/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/runref/test/infrastructure/repositorydoubles"
)

func spyFactory(name string) infraRepos.ProviderFactory {
	return func(domainRepos.ProviderOptions) domainRepos.ProviderRepository {
		return &doubles.SpyProviderRepository{ProviderName: name}
	}
}

func newRegistry() *infraRepos.ProviderRegistry {
	registry := infraRepos.NewProviderRegistry(domainRepos.ProviderOptions{Settings: entities.DefaultSettings()})
	registry.Register("github.com", spyFactory("github"))
	registry.Register("GitLab.com", spyFactory("gitlab"))
	return registry
}

func TestProviderRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should default an empty host to github.com", func(t *testing.T) {
		t.Parallel()

		// given
		registry := newRegistry()

		// when
		provider, err := registry.Get("")

		// then
		require.NoError(t, err)
		assert.Equal(t, "github", provider.Name())
	})

	t.Run("should match hosts case-insensitively", func(t *testing.T) {
		t.Parallel()

		// given
		registry := newRegistry()

		// when
		provider, err := registry.Get("GITLAB.COM")

		// then
		require.NoError(t, err)
		assert.Equal(t, "gitlab", provider.Name())
	})

	t.Run("should build a fresh provider per lookup", func(t *testing.T) {
		t.Parallel()

		// given
		registry := newRegistry()

		// when
		first, firstErr := registry.Get("github.com")
		second, secondErr := registry.Get("github.com")

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.NotSame(t, first, second)
	})

	t.Run("should list supported hosts for an unknown host", func(t *testing.T) {
		t.Parallel()

		// given
		registry := newRegistry()

		// when
		provider, err := registry.Get("example.com")

		// then
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), `"example.com"`)
		assert.Contains(t, err.Error(), "github.com, gitlab.com")
	})

	t.Run("should return hosts sorted", func(t *testing.T) {
		t.Parallel()

		// given
		registry := newRegistry()

		// when
		hosts := registry.Hosts()

		// then
		assert.Equal(t, []string{"github.com", "gitlab.com"}, hosts)
	})
}
