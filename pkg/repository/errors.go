package repository

import "errors"

// Construction errors. Every error returned by New wraps ErrInvalidConfig
// and one of the more specific errors below, so both can be checked with
// errors.Is.
var (
	// ErrInvalidConfig is returned when a repository cannot be built from
	// the supplied Config.
	ErrInvalidConfig = errors.New("repository: invalid configuration")

	// ErrInvalidStrategy is returned for a Strategy outside the defined set.
	ErrInvalidStrategy = errors.New("repository: invalid strategy")

	// ErrMissingRemote is returned when the strategy needs a remote source
	// that was not supplied.
	ErrMissingRemote = errors.New("repository: strategy requires a remote data source")

	// ErrMissingLocal is returned when the strategy needs a local source
	// that was not supplied.
	ErrMissingLocal = errors.New("repository: strategy requires a local data source")

	// ErrNoDataSource is returned when a hybrid strategy has neither source.
	ErrNoDataSource = errors.New("repository: no data source supplied")

	// ErrMissingToModel is returned when a remote source is configured but
	// no entity-to-model mapping was supplied.
	ErrMissingToModel = errors.New("repository: ToModel is required with a remote data source")
)

// ErrNotFound is returned by local data sources when no entity has the
// requested id. The repository treats it as a cache miss.
var ErrNotFound = errors.New("repository: entity not found")
