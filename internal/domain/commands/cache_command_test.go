//go:build unit

package commands_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/runref/internal/domain/commands"
	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/runref/test/infrastructure/repositorydoubles"
)

func newCacheFixture(t *testing.T) (*commands.CacheCommand, *doubles.InMemoryCacheRepository, *entities.Settings) {
	t.Helper()
	settings := entities.DefaultSettings()
	settings.WorkspaceDir = t.TempDir()
	cache := doubles.NewInMemoryCacheRepository().
		WithEntry(commands.ToolRun, "kzu/sandbox", entities.CacheEntry{ETag: `"1"`}).
		WithEntry(commands.ToolRun, "kzu/other@v1.0.0", entities.CacheEntry{ETag: `"2"`}).
		WithEntry(commands.ToolGist, "gist.github.com/kzu/0123", entities.CacheEntry{ETag: `"3"`})
	return commands.NewCacheCommand(settings, cache), cache, settings
}

func TestCacheCommand(t *testing.T) {
	t.Parallel()

	t.Run("should list every cached reference", func(t *testing.T) {
		t.Parallel()

		// given
		command, _, _ := newCacheFixture(t)

		// when
		cached, err := command.List(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, cached, 3)
		assert.Equal(t, commands.ToolGist, cached[0].Tool)
	})

	t.Run("should clear a single reference and its extracted tree", func(t *testing.T) {
		t.Parallel()

		// given
		command, cache, settings := newCacheFixture(t)
		destination := entitybuilders.NewReferenceBuilder().BuildReference().
			Directory(settings.WorkspaceDir, settings.DefaultRef)
		require.NoError(t, os.MkdirAll(destination, 0o700))

		// when
		removed, err := command.Clear(context.Background(), commands.CacheClearOptions{Reference: "kzu/sandbox"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.NoDirExists(t, destination)
		remaining, _ := cache.List()
		assert.Len(t, remaining, 2)
	})

	t.Run("should clear only the entries of one tool", func(t *testing.T) {
		t.Parallel()

		// given
		command, cache, _ := newCacheFixture(t)

		// when
		removed, err := command.Clear(context.Background(), commands.CacheClearOptions{Tool: commands.ToolRun})

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		remaining, _ := cache.List()
		require.Len(t, remaining, 1)
		assert.Equal(t, commands.ToolGist, remaining[0].Tool)
	})

	t.Run("should clear everything without a filter", func(t *testing.T) {
		t.Parallel()

		// given
		command, cache, _ := newCacheFixture(t)

		// when
		removed, err := command.Clear(context.Background(), commands.CacheClearOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		remaining, _ := cache.List()
		assert.Empty(t, remaining)
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		// given
		command, _, _ := newCacheFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		removed, err := command.Clear(ctx, commands.CacheClearOptions{})

		// then
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, removed)
	})
}
