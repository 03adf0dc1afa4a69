package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

// Store implements repository.LocalDataSource with a JSON file holding an
// ordered array of entities. Every write rewrites the file atomically.
//
// The file is read once and kept in memory; Watch reloads it when another
// process changes it.
type Store[E any] struct {
	path   string
	key    func(E) string
	logger log.Logger

	mu     sync.RWMutex
	items  []E
	loaded bool
}

var _ repository.LocalDataSource[struct{}] = (*Store[struct{}])(nil)

// NewStore creates a store persisting to dir/name. key returns the id of an
// entity.
func NewStore[E any](dir, name string, key func(E) string, logger log.Logger) *Store[E] {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Store[E]{
		path:   filepath.Join(dir, name),
		key:    key,
		logger: logger,
	}
}

// Path returns the full path to the cache file.
func (s *Store[E]) Path() string {
	return s.path
}

// GetAll returns every cached entity in stored order.
func (s *Store[E]) GetAll(ctx context.Context) ([]E, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// GetByID returns the entity with the given id or repository.ErrNotFound.
func (s *Store[E]) GetByID(ctx context.Context, id string) (E, error) {
	var zero E
	if err := s.ensureLoaded(); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return zero, fmt.Errorf("%s: %w", id, repository.ErrNotFound)
}

// Save inserts or replaces an entity.
func (s *Store[E]) Save(ctx context.Context, entity E) error {
	return s.mutate(func(items []E) []E {
		if i := s.indexOf(s.key(entity)); i >= 0 {
			items[i] = entity
			return items
		}
		return append(items, entity)
	})
}

// SaveAll replaces the whole cache.
func (s *Store[E]) SaveAll(ctx context.Context, entities []E) error {
	return s.mutate(func([]E) []E {
		return slices.Clone(entities)
	})
}

// Delete removes an entity. Missing ids are ignored.
func (s *Store[E]) Delete(ctx context.Context, id string) error {
	return s.mutate(func(items []E) []E {
		if i := s.indexOf(id); i >= 0 {
			return slices.Delete(items, i, i+1)
		}
		return items
	})
}

// Reload discards the in-memory copy and reads the file again.
func (s *Store[E]) Reload() error {
	items, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items, s.loaded = items, true
	s.mu.Unlock()
	return nil
}

// indexOf must be called with mu held.
func (s *Store[E]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e E) bool { return s.key(e) == id })
}

func (s *Store[E]) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload()
}

func (s *Store[E]) mutate(fn func([]E) []E) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(slices.Clone(s.items))
	if err := s.write(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// read returns an empty list if the file does not exist.
func (s *Store[E]) read() ([]E, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []E{}, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", s.path, err)
	}
	if items == nil {
		items = []E{}
	}
	return items, nil
}

// write persists items atomically: temp file, then rename.
func (s *Store[E]) write(items []E) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
