// Package person is a small fixture domain demonstrating the push-based
// access contract of the stream and repository packages over a fixed,
// pre-seeded record set.
package person

import (
	"context"

	"github.com/go-creek/creek/repository"
	"github.com/go-creek/creek/stream"
)

// Person is an immutable record. Construct it as a literal and treat it as a
// value; the repository only ever copies it.
type Person struct {
	ID        int
	FirstName string
	LastName  string
}

// NewRepository returns a Repository pre-seeded with a fixed set of persons,
// keyed by id and enumerated in seeding order.
func NewRepository() *Repository {
	repo := &Repository{
		MemoryRepository: repository.NewMemoryRepository[Person, int](),
	}

	for _, p := range []Person{
		{ID: 1, FirstName: "Michael", LastName: "Weston"},
		{ID: 2, FirstName: "John", LastName: "Doe"},
		{ID: 3, FirstName: "Mario", LastName: "SuperBros"},
		{ID: 4, FirstName: "Luigi", LastName: "SuperBros"},
	} {
		if err := repo.Create(context.Background(), p); err != nil {
			panic("could not seed person repository: " + err.Error())
		}
	}

	return repo
}

// Repository embeds the generic in-memory repository: GetByID returns a lazy
// single-value handle resolving to the person with the requested id, or
// completing empty; FindAll returns a lazy handle over all persons in seeding
// order.
type Repository struct {
	*repository.MemoryRepository[Person, int]
}

// FindByFirstName returns the first person with the given first name, or an
// empty handle if none matches. Multiple matches are not an error, only the
// first one is taken.
func (repo *Repository) FindByFirstName(name string) stream.Mono[Person] { //nolint:ireturn // handle type
	return repo.FindAll().
		Filter(func(p Person) bool { return p.FirstName == name }).
		Next()
}
