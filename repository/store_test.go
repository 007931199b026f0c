package repository_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-creek/creek/repository"
	"github.com/go-creek/creek/repository/testdata"
)

func TestJSONStore(t *testing.T) {
	t.Parallel()

	t.Run("store and load keeps the order", func(t *testing.T) {
		t.Parallel()

		store := repository.NewJSONStore(t.TempDir())
		entities := []testdata.Entity{testdata.TestEntity(), testdata.TestEntity(), testdata.TestEntity()}

		err := store.Store("Entity.json", entities)
		require.NoError(t, err)

		loaded := []testdata.Entity{}
		err = store.Load("Entity.json", &loaded)
		require.NoError(t, err)

		assert.Equal(t, entities, loaded)
	})

	t.Run("load missing file", func(t *testing.T) {
		t.Parallel()

		store := repository.NewJSONStore(t.TempDir())

		data := []testdata.Entity{}
		err := store.Load("DoesNotExist.json", &data)
		assert.ErrorIs(t, err, repository.ErrLoad)
		assert.ErrorIs(t, err, os.ErrNotExist, "a fresh repository treats a missing file as empty")
	})

	t.Run("nil data is a no-op", func(t *testing.T) {
		t.Parallel()

		store := repository.NewJSONStore(t.TempDir())

		err := store.Store("Entity.json", nil)
		assert.NoError(t, err)
	})
}
