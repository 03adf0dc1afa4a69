package result

import (
	"fmt"

	"github.com/bft-labs/repokit/pkg/failure"
)

// Result is the outcome of a data-access operation: either a value or a
// Failure, never both and never neither. The zero Result is an Error
// carrying a generic failure, so an uninitialised Result cannot be mistaken
// for success.
type Result[T any] struct {
	value   T
	failure failure.Failure
	ok      bool
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Error wraps a failure. An empty message is replaced by the default
// message for the failure's kind and code; nothing else is touched.
func Error[T any](f failure.Failure) Result[T] {
	return Result[T]{failure: withMessage(f)}
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool { return r.ok }

// IsError reports whether the result holds a failure.
func (r Result[T]) IsError() bool { return !r.ok }

// Data returns the value. It panics if the result is an Error: reading
// data from a failed result is a caller bug.
func (r Result[T]) Data() T {
	if !r.ok {
		panic(fmt.Sprintf("result: Data called on Error result: %v", r.Failure()))
	}
	return r.value
}

// Failure returns the failure. It panics if the result is a Success.
func (r Result[T]) Failure() failure.Failure {
	if r.ok {
		panic("result: Failure called on Success result")
	}
	return withMessage(r.failure)
}

func withMessage(f failure.Failure) failure.Failure {
	if f.Message == "" {
		f.Message = failure.DefaultMessage(f.Kind, f.Code)
	}
	return f
}

// Unwrap converts the result to Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.Failure()
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.value)
	}
	return fmt.Sprintf("Error(%v)", r.Failure())
}

// Match folds the result into a single value, forcing both branches to be
// handled.
func Match[T, U any](r Result[T], onSuccess func(T) U, onError func(failure.Failure) U) U {
	if r.ok {
		return onSuccess(r.value)
	}
	return onError(r.Failure())
}

// Map transforms a successful value. Errors pass through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Error[U](r.Failure())
	}
	return Success(fn(r.value))
}

// FlatMap chains a result-returning step. Errors pass through unchanged.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Error[U](r.Failure())
	}
	return fn(r.value)
}
