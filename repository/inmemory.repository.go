package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/go-creek/creek/stream"
)

// NewMemoryRepository returns an implementation of Repository for the given
// entity E. It is expected that E has a field called `ID`, that is used as
// the primary key and can be overwritten by WithIDField.
//
// Entities are enumerated in the order they were first saved, so FindAll
// delivers a stable sequence. If your repository needs additional methods,
// you can embed this repo into your own implementation to extend it to your
// use case. See the examples in the test files.
//
// Warning: the consistency of MemoryRepository is not on paar with ACID
// guarantees of a RDBMS. Certain steps are taken to have a minimum of
// consistency, but be aware that this is not a design goal.
func NewMemoryRepository[E any, ID id](opts ...Option) *MemoryRepository[E, ID] {
	repo := &MemoryRepository[E, ID]{
		Mutex:        &sync.Mutex{},
		Data:         make(map[ID]E),
		order:        nil,
		currentIntID: *new(ID),
		repoConfig: repoConfig{
			idFieldName: "ID",
			store:       noopStore{},
			filename:    defaultFileName(new(E)),
		},
	}

	for _, opt := range opts {
		opt(&repo.repoConfig)
	}

	records := []E{}

	err := repo.store.Load(repo.filename, &records)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("could not load data for memory repository from store: " + err.Error())
	}

	// the store snapshot is ordered, loading restores the insertion order
	for _, e := range records {
		id := repo.getID(e)

		repo.Data[id] = e
		repo.order = append(repo.order, id)
		repo.observeID(id)
	}

	return repo
}

// MemoryRepository implements Repository in a generic way. Use it to speed up
// your unit testing and to teach the push-based access contract.
type MemoryRepository[E any, ID id] struct {
	// Mutex is embedded, so that repositories who extend MemoryRepository can
	// lock the same mutex as other methods.
	*sync.Mutex

	// Data is the repository's collection. It is exposed in case you're
	// extending the repository. PREVENT using and accessing Data directly,
	// go through the repository methods. If you write to Data, USE the Mutex
	// to lock first and keep order in sync.
	Data map[ID]E

	// order holds the ids in insertion order and defines the enumeration
	// order of All and FindAll.
	order []ID

	currentIntID ID

	repoConfig
}

const panicIDNotSupported = "type of ID is not supported: "

func defaultFileName(entity any) string {
	return reflect.TypeOf(entity).Elem().Name() + ".json"
}

func (repo *MemoryRepository[E, ID]) getID(t any) ID { //nolint:ireturn // needs access to the type ID
	val := reflect.ValueOf(t)

	idField := val.FieldByName(repo.idFieldName)
	if reflect.DeepEqual(idField, reflect.Value{}) { //nolint:govet // fp, see: https://github.com/golang/go/issues/43993
		panic("entity does not have the field with name: " + repo.idFieldName)
	}

	var id ID

	switch idField.Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().SetString(idField.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		reflect.ValueOf(&id).Elem().SetInt(idField.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		reflect.ValueOf(&id).Elem().SetUint(idField.Uint())
	default:
		panic(panicIDNotSupported + idField.Kind().String())
	}

	return id
}

// NextID returns a new ID. It can be of the underlying type of string or integer.
func (repo *MemoryRepository[E, ID]) NextID(_ context.Context) (ID, error) { //nolint:ireturn // valid use of generics
	var id ID

	switch reflect.TypeOf(id).Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().SetString(uuid.New().String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		repo.Lock()
		defer repo.Unlock()

		newID := reflect.ValueOf(&repo.currentIntID).Elem().Int() + 1
		reflect.ValueOf(&repo.currentIntID).Elem().SetInt(newID)
		reflect.ValueOf(&id).Elem().SetInt(newID)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		repo.Lock()
		defer repo.Unlock()

		newID := reflect.ValueOf(&repo.currentIntID).Elem().Uint() + 1
		reflect.ValueOf(&repo.currentIntID).Elem().SetUint(newID)
		reflect.ValueOf(&id).Elem().SetUint(newID)
	default:
		panic(panicIDNotSupported + reflect.TypeOf(id).Kind().String())
	}

	return id, nil
}

// observeID keeps the NextID counter ahead of explicitly chosen integer ids,
// so generated ids do not collide with seeded or loaded entities.
// Callers must hold the lock.
func (repo *MemoryRepository[E, ID]) observeID(id ID) {
	current := reflect.ValueOf(&repo.currentIntID).Elem()

	switch reflect.TypeOf(id).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v := reflect.ValueOf(id).Int(); v > current.Int() {
			current.SetInt(v)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v := reflect.ValueOf(id).Uint(); v > current.Uint() {
			current.SetUint(v)
		}
	default: // string ids are random, there is no counter to sync
	}
}

func (repo *MemoryRepository[E, ID]) Create(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	id := repo.getID(entity)
	if id == *new(ID) {
		return fmt.Errorf("missing ID: %w", ErrSaveFailed)
	}

	if _, found := repo.Data[id]; found {
		return ErrAlreadyExists
	}

	repo.Data[id] = entity
	repo.order = append(repo.order, id)
	repo.observeID(id)

	err := repo.store.Store(repo.filename, repo.snapshot())
	if err != nil {
		delete(repo.Data, id)
		repo.order = repo.order[:len(repo.order)-1]

		return fmt.Errorf("could not save: %w", err)
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) Read(_ context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	repo.Lock()
	defer repo.Unlock()

	if e, ok := repo.Data[id]; ok {
		return e, nil
	}

	return *new(E), ErrNotFound
}

func (repo *MemoryRepository[E, ID]) Update(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	id := repo.getID(entity)
	if id == *new(ID) {
		return fmt.Errorf("missing ID: %w", ErrSaveFailed)
	}

	if _, found := repo.Data[id]; !found {
		return fmt.Errorf("entity does not exist yet: %w", ErrSaveFailed)
	}

	oldEntity := repo.Data[id]
	repo.Data[id] = entity

	err := repo.store.Store(repo.filename, repo.snapshot())
	if err != nil {
		repo.Data[id] = oldEntity
		return fmt.Errorf("could not save: %w", err)
	}

	return nil
}

// Save creates the entity or updates it in place, keeping the original
// insertion position for existing ids.
func (repo *MemoryRepository[E, ID]) Save(_ context.Context, entity E) error {
	repo.Lock()
	defer repo.Unlock()

	id := repo.getID(entity)
	if id == *new(ID) {
		return fmt.Errorf("missing ID: %w", ErrSaveFailed)
	}

	oldEntity, existed := repo.Data[id]
	repo.Data[id] = entity

	if !existed {
		repo.order = append(repo.order, id)
	}

	repo.observeID(id)

	err := repo.store.Store(repo.filename, repo.snapshot())
	if err != nil {
		if existed {
			repo.Data[id] = oldEntity
		} else {
			delete(repo.Data, id)
			repo.order = repo.order[:len(repo.order)-1]
		}

		return fmt.Errorf("could not save: %w", err)
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) Delete(ctx context.Context, entity E) error {
	return repo.DeleteByID(ctx, repo.getID(entity))
}

func (repo *MemoryRepository[E, ID]) DeleteByID(_ context.Context, id ID) error {
	repo.Lock()
	defer repo.Unlock()

	oldEntity, existed := repo.Data[id]

	delete(repo.Data, id)

	pos := slices.Index(repo.order, id)
	if pos >= 0 {
		repo.order = slices.Delete(repo.order, pos, pos+1)
	}

	err := repo.store.Store(repo.filename, repo.snapshot())
	if err != nil {
		if existed {
			repo.Data[id] = oldEntity
			repo.order = slices.Insert(repo.order, min(pos, len(repo.order)), id)
		}

		return fmt.Errorf("could not delete: %w", err)
	}

	return nil
}

func (repo *MemoryRepository[E, ID]) DeleteAll(_ context.Context) error {
	repo.Lock()
	defer repo.Unlock()

	oldData := repo.Data
	oldOrder := repo.order

	repo.Data = make(map[ID]E)
	repo.order = nil

	err := repo.store.Store(repo.filename, repo.snapshot())
	if err != nil {
		repo.Data = oldData
		repo.order = oldOrder

		return fmt.Errorf("could not save: %w", err)
	}

	return nil
}

// All returns every entity in insertion order.
func (repo *MemoryRepository[E, ID]) All(_ context.Context) ([]E, error) {
	repo.Lock()
	defer repo.Unlock()

	return repo.snapshot(), nil
}

func (repo *MemoryRepository[E, ID]) Exists(_ context.Context, id ID) (bool, error) {
	repo.Lock()
	defer repo.Unlock()

	_, ok := repo.Data[id]

	return ok, nil
}

func (repo *MemoryRepository[E, ID]) Count(_ context.Context) (int, error) {
	repo.Lock()
	defer repo.Unlock()

	return len(repo.Data), nil
}

// GetByID returns a lazy single-value handle resolving to the entity with the
// given id, or completing empty if no entity matches. The lookup happens when
// a consumer attaches, not when the handle is constructed.
func (repo *MemoryRepository[E, ID]) GetByID(id ID) stream.Mono[E] { //nolint:ireturn // valid use of generics
	return stream.MonoFrom(func(sink *stream.Sink[E]) {
		repo.Lock()
		entity, ok := repo.Data[id]
		repo.Unlock()

		if !ok {
			sink.Complete()
			return
		}

		if sink.Next(entity) {
			sink.Complete()
		}
	})
}

// FindAll returns a lazy multi-value handle over every entity in insertion
// order. Each subscription snapshots the collection under the lock, so it
// observes a consistent sequence even if the repository changes afterwards.
func (repo *MemoryRepository[E, ID]) FindAll() stream.Flux[E] { //nolint:ireturn // valid use of generics
	return stream.FluxFrom(func(sink *stream.Sink[E]) {
		repo.Lock()
		entities := repo.snapshot()
		repo.Unlock()

		for _, e := range entities {
			if !sink.Next(e) {
				return
			}
		}

		sink.Complete()
	})
}

// snapshot copies the collection in insertion order. Callers must hold the lock.
func (repo *MemoryRepository[E, ID]) snapshot() []E {
	entities := make([]E, 0, len(repo.order))

	for _, id := range repo.order {
		entities = append(entities, repo.Data[id])
	}

	return entities
}
