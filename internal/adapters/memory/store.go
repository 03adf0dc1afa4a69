package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bft-labs/repokit/pkg/repository"
)

// Store is an in-process repository.LocalDataSource. It keeps insertion
// order and loses its contents when the process exits.
type Store[E any] struct {
	key   func(E) string
	items []E
	mu    sync.RWMutex
}

var _ repository.LocalDataSource[struct{}] = (*Store[struct{}])(nil)

func NewStore[E any](key func(E) string) *Store[E] {
	return &Store[E]{key: key}
}

func (s *Store[E]) GetAll(ctx context.Context) ([]E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]E{}, s.items...), nil
}

func (s *Store[E]) GetByID(ctx context.Context, id string) (E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	var zero E
	return zero, fmt.Errorf("%s: %w", id, repository.ErrNotFound)
}

func (s *Store[E]) Save(ctx context.Context, entity E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(s.key(entity)); i >= 0 {
		s.items[i] = entity
		return nil
	}
	s.items = append(s.items, entity)
	return nil
}

func (s *Store[E]) SaveAll(ctx context.Context, entities []E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(entities)
	return nil
}

func (s *Store[E]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	return nil
}

// Len returns the number of cached entities.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[E]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e E) bool { return s.key(e) == id })
}
