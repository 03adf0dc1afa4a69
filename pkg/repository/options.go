package repository

import (
	"context"
	"time"

	"github.com/bft-labs/repokit/pkg/log"
)

// DefaultMirrorTimeout bounds a single best-effort cache write.
const DefaultMirrorTimeout = 10 * time.Second

// Config holds the required configuration for a Repository.
type Config[E any, M Model[E]] struct {
	// Strategy selects how Remote and Local are combined.
	Strategy Strategy

	// Remote is the network source. Required by every strategy except
	// LocalOnly.
	Remote RemoteDataSource[M]

	// Local is the cache. Required by LocalOnly.
	Local LocalDataSource[E]

	// ToModel maps an entity to its wire model for Create and Update.
	// Required whenever Remote is set.
	ToModel func(E) M

	// CacheQueryResults stores the results of Search and GetPaginated in
	// Local. Defaults to Local.SaveAll, which replaces the whole cache.
	CacheQueryResults func(ctx context.Context, local LocalDataSource[E], entities []E) error

	// Match filters Local.GetAll for Search when no remote source is in
	// use. Search fails with a cache failure under LocalOnly when nil.
	Match func(entity E, query string) bool
}

// Option configures optional behavior of a Repository.
type Option func(*options)

type options struct {
	logger        log.Logger
	observer      Observer
	mirrorTimeout time.Duration
}

func defaultOptions() options {
	return options{
		logger:        log.NoopLogger{},
		observer:      NoopObserver{},
		mirrorTimeout: DefaultMirrorTimeout,
	}
}

// WithLogger sets the logger used for fallbacks and mirror failures.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the observer notified of every operation outcome.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithMirrorTimeout bounds each best-effort cache write. Zero disables the
// bound.
func WithMirrorTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.mirrorTimeout = d
		}
	}
}

// ReplaceAll is the default CacheQueryResults policy.
func ReplaceAll[E any](ctx context.Context, local LocalDataSource[E], entities []E) error {
	return local.SaveAll(ctx, entities)
}

// MergeEach is a CacheQueryResults policy that saves each entity without
// dropping the rest of the cache.
func MergeEach[E any](ctx context.Context, local LocalDataSource[E], entities []E) error {
	for _, e := range entities {
		if err := local.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
