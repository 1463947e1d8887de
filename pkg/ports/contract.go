package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunParamStoreContract runs a suite of tests to verify that a ParamStore
// implementation adheres to the defined interface contract.
func RunParamStoreContract(t *testing.T, store ParamStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "4100"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "4100", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "4800"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "4800", got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrParamNotFound)
	})

	t.Run("Empty Value Is Stored", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key+"-empty", ""))
		got, err := store.Get(ctx, key+"-empty")
		require.NoError(t, err)
		assert.Equal(t, "", got)
		_ = store.Delete(ctx, key+"-empty")
	})

	t.Run("Keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key+"-b", "b"))
		require.NoError(t, store.Set(ctx, key+"-a", "a"))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
		assert.Contains(t, keys, key+"-a")
		assert.Contains(t, keys, key+"-b")
		assert.IsIncreasing(t, keys)

		_ = store.Delete(ctx, key+"-a")
		_ = store.Delete(ctx, key+"-b")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrParamNotFound, "Get after Delete should return ErrParamNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key)
	})
}
