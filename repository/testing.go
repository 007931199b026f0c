package repository

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-creek/creek/repository/testdata"
	"github.com/go-creek/creek/stream"
)

// TestSuite runs the Repository contract against any implementation.
// Use it to verify decorators and alternative backends behave like the
// in-memory reference.
func TestSuite( //nolint:maintidx,tparallel // t.Parallel can only be called once, the caller decides
	t *testing.T,
	newEntityRepo func(opts ...Option) Repository[testdata.Entity, testdata.EntityID],
	newEntityRepoInt func(opts ...Option) Repository[testdata.EntityWithIntPK, testdata.EntityIDInt],
) {
	t.Helper()

	if newEntityRepo == nil || newEntityRepoInt == nil {
		t.Fatal("repository constructor is nil")
	}

	ctx := context.Background()

	t.Run("new", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		assert.NotNil(t, repo)
	})

	t.Run("NextID", func(t *testing.T) {
		t.Parallel()

		t.Run("string", func(t *testing.T) {
			t.Parallel()

			repo := newEntityRepo()

			id, err := repo.NextID(ctx)
			assert.NoError(t, err)
			assert.NotEmpty(t, id)
		})

		t.Run("int", func(t *testing.T) {
			t.Parallel()

			repo := newEntityRepoInt()

			id, _ := repo.NextID(ctx)
			id, _ = repo.NextID(ctx)
			id, _ = repo.NextID(ctx)
			assert.Equal(t, testdata.EntityIDInt(3), id)
		})
	})

	t.Run("Create", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entity := testdata.TestEntity()

		err := repo.Create(ctx, entity)
		assert.NoError(t, err)

		got, err := repo.Read(ctx, entity.ID)
		assert.NoError(t, err)
		assert.Equal(t, entity, got)

		err = repo.Create(ctx, entity)
		assert.ErrorIs(t, err, ErrAlreadyExists)

		err = repo.Create(ctx, testdata.Entity{}) //nolint:exhaustruct // missing id is the test case
		assert.ErrorIs(t, err, ErrSaveFailed)
	})

	t.Run("Read not found", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()

		_, err := repo.Read(ctx, testdata.EntityID("does-not-exist"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entity := testdata.TestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		entity.Name = gofakeit.Name()
		err := repo.Update(ctx, entity)
		assert.NoError(t, err)

		got, err := repo.Read(ctx, entity.ID)
		assert.NoError(t, err)
		assert.Equal(t, entity, got)

		err = repo.Update(ctx, testdata.TestEntity())
		assert.ErrorIs(t, err, ErrSaveFailed, "does not exist yet")
	})

	t.Run("Save and Delete", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entity := testdata.TestEntity()

		err := repo.Save(ctx, entity)
		assert.NoError(t, err)

		exists, err := repo.Exists(ctx, entity.ID)
		assert.NoError(t, err)
		assert.True(t, exists)

		err = repo.Delete(ctx, entity)
		assert.NoError(t, err)

		exists, err = repo.Exists(ctx, entity.ID)
		assert.NoError(t, err)
		assert.False(t, exists)

		count, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("All keeps insertion order", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entities := []testdata.Entity{testdata.TestEntity(), testdata.TestEntity(), testdata.TestEntity()}

		for _, e := range entities {
			require.NoError(t, repo.Create(ctx, e))
		}

		all, err := repo.All(ctx)
		assert.NoError(t, err)
		assert.Equal(t, entities, all)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		require.NoError(t, repo.Create(ctx, testdata.TestEntity()))

		err := repo.DeleteAll(ctx)
		assert.NoError(t, err)

		count, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("GetByID", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entity := testdata.TestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		t.Run("found", func(t *testing.T) {
			t.Parallel()

			stream.VerifyMono(repo.GetByID(entity.ID)).
				ExpectNext(entity).
				ExpectComplete().
				Verify(t)
		})

		t.Run("not found completes empty", func(t *testing.T) {
			t.Parallel()

			stream.VerifyMono(repo.GetByID(testdata.EntityID("missing"))).
				ExpectNextCount(0).
				ExpectComplete().
				Verify(t)
		})

		t.Run("lazy until consumed", func(t *testing.T) {
			t.Parallel()

			lateRepo := newEntityRepo()
			late := testdata.TestEntity()

			mono := lateRepo.GetByID(late.ID)

			require.NoError(t, lateRepo.Create(ctx, late))

			got, ok, err := mono.Block(ctx)
			assert.NoError(t, err)
			assert.True(t, ok, "the lookup happens on consumption, after the entity was created")
			assert.Equal(t, late, got)
		})
	})

	t.Run("FindAll", func(t *testing.T) {
		t.Parallel()

		repo := newEntityRepo()
		entities := []testdata.Entity{testdata.TestEntity(), testdata.TestEntity()}

		for _, e := range entities {
			require.NoError(t, repo.Create(ctx, e))
		}

		t.Run("delivers all in insertion order", func(t *testing.T) {
			t.Parallel()

			stream.Verify(repo.FindAll()).
				ExpectNext(entities...).
				ExpectComplete().
				Verify(t)
		})

		t.Run("idempotent across subscriptions", func(t *testing.T) {
			t.Parallel()

			first, ok, err := repo.FindAll().CollectList().Block(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			second, ok, err := repo.FindAll().CollectList().Block(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, first, second)
		})
	})
}
