package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-creek/creek/repository"
	"github.com/go-creek/creek/repository/testdata"
	"github.com/go-creek/creek/stream"
)

var (
	ctx            = context.Background()
	errStoreFailed = errors.New("store failed")
)

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repository.TestSuite(t,
		func(opts ...repository.Option) repository.Repository[testdata.Entity, testdata.EntityID] {
			return repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](opts...)
		},
		func(opts ...repository.Option) repository.Repository[testdata.EntityWithIntPK, testdata.EntityIDInt] {
			return repository.NewMemoryRepository[testdata.EntityWithIntPK, testdata.EntityIDInt](opts...)
		},
	)
}

func TestNewMemoryRepository(t *testing.T) {
	t.Parallel()

	t.Run("load from store", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
			repository.WithStore(testStoreSuccessEntity(t)),
		)
		assert.NotNil(t, repo)
	})

	t.Run("load from store fails", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
				repository.WithStore(testStoreLoadFails()),
			)
		})
	})
}

func TestEntityWithoutID(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository[testdata.EntityWithoutID, testdata.EntityID]()

	assert.Panics(t, func() {
		repo.Save(ctx, testdata.EntityWithoutID{Name: gofakeit.Name()})
	})
}

func TestWithIDField(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository[testdata.EntityWithoutID, string](
		repository.WithIDField("Name"),
	)

	err := repo.Save(ctx, testdata.EntityWithoutID{Name: gofakeit.Name()})
	assert.NoError(t, err)
}

func TestMemoryRepository_StoreFails(t *testing.T) {
	t.Parallel()

	t.Run("create rolls back", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
			repository.WithStore(testStoreStoreFails()),
		)

		err := repo.Create(ctx, testdata.TestEntity())
		assert.Error(t, err)

		count, _ := repo.Count(ctx)
		assert.Equal(t, 0, count)

		all, _ := repo.All(ctx)
		assert.Empty(t, all, "the insertion order index is rolled back as well")
	})

	t.Run("delete rolls back", func(t *testing.T) {
		t.Parallel()

		store := &flakyStore{failing: false}
		repo := repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
			repository.WithStore(store),
		)

		entity := testdata.TestEntity()
		require.NoError(t, repo.Create(ctx, entity))

		store.failing = true
		err := repo.DeleteByID(ctx, entity.ID)
		assert.Error(t, err)

		all, _ := repo.All(ctx)
		assert.Equal(t, []testdata.Entity{entity}, all)
	})
}

func TestMemoryRepository_JSONStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// ids deliberately descend, so a resorted reload would flip the order
	entities := []testdata.Entity{
		{ID: "z", Name: gofakeit.Name()},
		{ID: "m", Name: gofakeit.Name()},
		{ID: "a", Name: gofakeit.Name()},
	}

	repo := repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
		repository.WithStore(repository.NewJSONStore(dir)),
		repository.WithStoreFilename("entities.json"),
	)

	for _, e := range entities {
		require.NoError(t, repo.Create(ctx, e))
	}

	loaded := repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](
		repository.WithStore(repository.NewJSONStore(dir)),
		repository.WithStoreFilename("entities.json"),
	)

	count, err := loaded.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, len(entities), count)

	all, err := loaded.All(ctx)
	assert.NoError(t, err)
	assert.Equal(t, entities, all, "insertion order survives the reload")

	stream.Verify(loaded.FindAll()).
		ExpectNext(entities...).
		ExpectComplete().
		Verify(t)
}

func TestMemoryRepository_NextIDSkipsUsedIDs(t *testing.T) {
	t.Parallel()

	t.Run("after seeding explicit ids", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewMemoryRepository[testdata.EntityWithIntPK, testdata.EntityIDInt]()
		require.NoError(t, repo.Create(ctx, testdata.EntityWithIntPK{ID: 5, Name: gofakeit.Name()}))

		id, err := repo.NextID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, testdata.EntityIDInt(6), id)

		err = repo.Create(ctx, testdata.EntityWithIntPK{ID: id, Name: gofakeit.Name()})
		assert.NoError(t, err, "a generated id must not collide with a seeded one")
	})

	t.Run("after loading from a store", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		repo := repository.NewMemoryRepository[testdata.EntityWithIntPK, testdata.EntityIDInt](
			repository.WithStore(repository.NewJSONStore(dir)),
		)
		require.NoError(t, repo.Save(ctx, testdata.EntityWithIntPK{ID: 7, Name: gofakeit.Name()}))

		loaded := repository.NewMemoryRepository[testdata.EntityWithIntPK, testdata.EntityIDInt](
			repository.WithStore(repository.NewJSONStore(dir)),
		)

		id, err := loaded.NextID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, testdata.EntityIDInt(8), id)
	})
}

// TestMemoryRepository_Extend shows how to build a domain repository on top of
// the generic one.
func TestMemoryRepository_Extend(t *testing.T) {
	t.Parallel()

	repo := &namedEntityRepository{
		MemoryRepository: repository.NewMemoryRepository[testdata.Entity, testdata.EntityID](),
	}

	entity := testdata.TestEntity()
	require.NoError(t, repo.Create(ctx, entity))

	got, err := repo.FindByName(ctx, entity.Name)
	assert.NoError(t, err)
	assert.Equal(t, entity, got)

	_, err = repo.FindByName(ctx, "unknown")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type namedEntityRepository struct {
	*repository.MemoryRepository[testdata.Entity, testdata.EntityID]
}

func (repo *namedEntityRepository) FindByName(ctx context.Context, name string) (testdata.Entity, error) {
	all, err := repo.All(ctx)
	if err != nil {
		return testdata.Entity{}, err //nolint:wrapcheck // same package family
	}

	for _, e := range all {
		if e.Name == name {
			return e, nil
		}
	}

	return testdata.Entity{}, repository.ErrNotFound
}

type testStore struct {
	load  func(filename string, data any) error
	store func(filename string, data any) error
}

func (s testStore) Load(filename string, data any) error {
	return s.load(filename, data)
}

func (s testStore) Store(filename string, data any) error {
	return s.store(filename, data)
}

func testStoreLoadFails() testStore {
	return testStore{
		load: func(_ string, _ any) error {
			return errStoreFailed
		},
		store: func(_ string, _ any) error {
			return nil
		},
	}
}

func testStoreStoreFails() testStore {
	return testStore{
		load: func(_ string, _ any) error {
			return nil
		},
		store: func(_ string, _ any) error {
			return errStoreFailed
		},
	}
}

func testStoreSuccessEntity(t *testing.T) testStore {
	t.Helper()

	return testStore{
		load: func(filename string, data any) error {
			assert.Equal(t, "Entity.json", filename)
			assert.NotNil(t, data)

			return nil
		},
		store: func(filename string, data any) error {
			assert.Equal(t, "Entity.json", filename)
			assert.NotNil(t, data)

			return nil
		},
	}
}

type flakyStore struct {
	failing bool
}

func (s *flakyStore) Load(_ string, _ any) error {
	return nil
}

func (s *flakyStore) Store(_ string, _ any) error {
	if s.failing {
		return errStoreFailed
	}

	return nil
}
