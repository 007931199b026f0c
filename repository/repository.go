package repository

import (
	"context"
	"errors"

	"github.com/go-creek/creek/stream"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSaveFailed    = errors.New("save failed")
	ErrAlreadyExists = errors.New("exists already")
)

// Repository is a general purpose interface documenting which methods are
// available by the generic MemoryRepository. ID is the primary key and needs
// to be of one of the underlying types.
//
// The synchronous methods return their result directly. GetByID and FindAll
// return lazy handles instead: no lookup happens until a consumer attaches,
// see the stream package.
type Repository[E any, ID id] interface {
	NextID(ctx context.Context) (ID, error)

	Create(ctx context.Context, entity E) error
	Read(ctx context.Context, id ID) (E, error)
	Update(ctx context.Context, entity E) error
	Save(ctx context.Context, entity E) error
	Delete(ctx context.Context, entity E) error
	DeleteByID(ctx context.Context, id ID) error
	DeleteAll(ctx context.Context) error

	All(ctx context.Context) ([]E, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Count(ctx context.Context) (int, error)

	GetByID(id ID) stream.Mono[E]
	FindAll() stream.Flux[E]
}

// id are the types allowed as a primary key used in the generic Repository.
type id interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Option takes in a repository configuration to set different optional
// properties.
type Option func(*repoConfig)

// WithIDField set's the name of the field that is used as an id or primary key.
// If not set, it is assumed that the entity struct has a field with the name "ID".
func WithIDField(idFieldName string) Option {
	return func(config *repoConfig) {
		config.idFieldName = idFieldName
	}
}

// WithStore sets a Store used to persist the Repository.
//
// There are no transactions or any consistency guarantees at all! For example,
// if a store fails, the collection is still changed in memory of the repository.
func WithStore(store Store) Option {
	return func(config *repoConfig) {
		config.store = store
	}
}

// WithStoreFilename overwrites the file name a Store should use to persist
// this Repository.
func WithStoreFilename(name string) Option {
	return func(config *repoConfig) {
		config.filename = name
	}
}

type repoConfig struct {
	idFieldName string
	store       Store
	filename    string
}
