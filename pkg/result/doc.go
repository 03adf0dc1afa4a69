// Package result provides the Result type returned by every repository
// operation and the guard combinators that produce it.
//
// A Result holds either a value or a failure.Failure. Reading the wrong side
// (Data on an Error, Failure on a Success) panics, because it can only be a
// programming error.
//
//	r := result.SafeCall(ctx, func(ctx context.Context) (*Note, error) {
//	    return client.Fetch(ctx, id)
//	})
//	title := result.Match(r,
//	    func(n *Note) string { return n.Title },
//	    func(f failure.Failure) string { return "unavailable: " + f.Message },
//	)
package result
