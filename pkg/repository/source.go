package repository

import "context"

// Model is the data-layer representation of an entity E, as exchanged with
// a remote data source. Its wire form is its encoding/json form.
type Model[E any] interface {
	ToEntity() E
}

// PageRequest describes one page of a paginated read. Page is 1-based.
type PageRequest struct {
	Page       int
	Limit      int
	SortBy     string
	Descending bool
}

// Offset returns the index of the first item on the page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// RemoteDataSource is the network-backed source of models.
// Implementations report transport problems as *failure.TransportError.
type RemoteDataSource[M any] interface {
	GetAll(ctx context.Context) ([]M, error)
	GetByID(ctx context.Context, id string) (M, error)
	Create(ctx context.Context, model M) (M, error)
	Update(ctx context.Context, model M) (M, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]M, error)
	GetPaginated(ctx context.Context, page PageRequest) ([]M, error)
}

// LocalDataSource is the on-device cache of entities.
type LocalDataSource[E any] interface {
	GetAll(ctx context.Context) ([]E, error)

	// GetByID returns ErrNotFound when no entity has the id.
	GetByID(ctx context.Context, id string) (E, error)

	// Save inserts or replaces a single entity.
	Save(ctx context.Context, entity E) error

	// SaveAll replaces the entire contents of the cache.
	SaveAll(ctx context.Context, entities []E) error

	// Delete removes an entity. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
