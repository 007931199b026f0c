package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*JSONStore)(nil)

// JSONStore persists a repository snapshot as a human-readable JSON file on
// disc. The snapshot is an ordered array, so the insertion order of the
// collection survives a reload; a JSON object would lose it, as its keys
// carry no order.
//
// The files use the standard go marshalling and are not schema aware.
// CAUTION: if you change your structs, loading old files can lead to data loss!
// CAUTION: only intended for local development and prototyping.
type JSONStore struct {
	dir string

	mu sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	err := os.MkdirAll(path, os.ModePerm)
	if err != nil {
		panic("could not create path: " + path + ": " + err.Error())
	}

	return &JSONStore{dir: path, mu: sync.Mutex{}}
}

func (s *JSONStore) Store(fileName string, data any) error {
	if data == nil {
		return nil
	}

	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.WriteFile(filepath.Join(s.dir, fileName), buf, 0o644) //nolint:gosec,mnd // human-readable local files
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	return nil
}

func (s *JSONStore) Load(fileName string, data any) error {
	s.mu.Lock()
	buf, err := os.ReadFile(filepath.Join(s.dir, fileName))
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	err = json.Unmarshal(buf, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return nil
}
