package repository

import "errors"

var (
	ErrStore = errors.New("could not store repository data")
	ErrLoad  = errors.New("could not load repository data")
)

// Store persists and restores a repository collection as a whole.
//
// The repository hands over an ordered snapshot of its entities on every
// write and expects the same shape back on Load, so a restored repository
// enumerates its entities in the order they were originally saved. A store
// with nothing persisted yet either leaves data untouched and returns nil,
// or returns an error wrapping os.ErrNotExist.
type Store interface {
	Store(fileName string, data any) error
	Load(fileName string, data any) error
}

var _ Store = (*noopStore)(nil)

// noopStore is the default: the collection lives in memory only.
type noopStore struct{}

func (n noopStore) Store(_ string, _ any) error {
	return nil
}

func (n noopStore) Load(_ string, _ any) error {
	return nil
}
