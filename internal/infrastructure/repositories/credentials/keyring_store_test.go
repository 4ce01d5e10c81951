//go:build unit

package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/rios0rios0/runref/internal/domain/entities"
	"github.com/rios0rios0/runref/internal/infrastructure/repositories/credentials"
)

//nolint:paralleltest // keyring.MockInit swaps a process-wide provider
func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	settings := &entities.Settings{KeyringService: "runref-test"}

	t.Run("should report no accounts for an unknown service", func(t *testing.T) {
		// given
		store := credentials.NewKeyringStore(settings)

		// when
		accounts, err := store.GetAccounts("https://unknown.example.com")

		// then
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("should store, list and read a credential", func(t *testing.T) {
		// given
		store := credentials.NewKeyringStore(settings)
		scope := "https://github.com/kzu"

		// when
		require.NoError(t, store.AddOrUpdate(scope, "kzu", "first"))
		require.NoError(t, store.AddOrUpdate(scope, "kzu", "second"))
		accounts, listErr := store.GetAccounts(scope)
		credential, getErr := store.Get(scope, "kzu")

		// then
		require.NoError(t, listErr)
		require.NoError(t, getErr)
		assert.Equal(t, []string{"kzu"}, accounts)
		require.NotNil(t, credential)
		assert.Equal(t, "second", credential.Secret)
	})

	t.Run("should index several accounts for one scope", func(t *testing.T) {
		// given
		store := credentials.NewKeyringStore(settings)
		scope := "https://gitlab.com"

		// when
		require.NoError(t, store.AddOrUpdate(scope, "alice", "a"))
		require.NoError(t, store.AddOrUpdate(scope, "bob", "b"))
		accounts, err := store.GetAccounts(scope)

		// then
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alice", "bob"}, accounts)
	})

	t.Run("should remove a credential and its index entry", func(t *testing.T) {
		// given
		store := credentials.NewKeyringStore(settings)
		scope := "https://bitbucket.org"
		require.NoError(t, store.AddOrUpdate(scope, "kzu", "secret"))

		// when
		err := store.Remove(scope, "kzu")

		// then
		require.NoError(t, err)
		accounts, listErr := store.GetAccounts(scope)
		require.NoError(t, listErr)
		assert.Empty(t, accounts)
		credential, getErr := store.Get(scope, "kzu")
		require.NoError(t, getErr)
		assert.Nil(t, credential)
	})

	t.Run("should tolerate removing an unknown account", func(t *testing.T) {
		// given
		store := credentials.NewKeyringStore(settings)

		// when
		err := store.Remove("https://dev.azure.com/org", "nobody")

		// then
		require.NoError(t, err)
	})
}
