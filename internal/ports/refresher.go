package ports

import "context"

// Refresher performs one cache refresh pass and reports how many entities
// were fetched.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) (int, error)

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context) (int, error) { return f(ctx) }

// Watcher reports external changes to a local store. Watch blocks until
// ctx is done, calling onChange after each change has been applied.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}
