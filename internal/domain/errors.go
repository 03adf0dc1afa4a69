package domain

import "errors"

// Application errors. They can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start is called on a running refresher.
	ErrAlreadyRunning = errors.New("repokit: already running")

	// ErrNotRunning is returned when Stop is called on a stopped refresher.
	ErrNotRunning = errors.New("repokit: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("repokit: shutdown timeout")

	// ErrInvalidConfig is returned when CLI configuration validation fails.
	ErrInvalidConfig = errors.New("repokit: invalid configuration")
)
