package result

import (
	"context"
	"fmt"
	"reflect"

	"github.com/bft-labs/repokit/pkg/failure"
)

// NoDataMessage is the message of the failure SafeCall returns when an
// operation completes without error but produces nothing.
const NoDataMessage = failure.NoDataMessage

// SafeCall runs op and converts its outcome into a Result.
//
// A returned value becomes Success. A nil pointer, interface, map, func or
// channel is treated as a client-error failure rather than success, so
// callers never see "success with nothing". A returned error is classified
// with failure.Classify, and a panic is recovered into a generic failure
// carrying the stack.
func SafeCall[T any](ctx context.Context, op func(context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Error[T](recovered(rec))
		}
	}()

	value, err := op(ctx)
	if err != nil {
		return Error[T](failure.Classify(err))
	}
	if isNil(value) {
		return Error[T](failure.NoData())
	}
	return Success(value)
}

// Hooks customise SafeRemoteCall. Both fields are optional.
type Hooks[T, U any] struct {
	// OnBeforeSuccess runs for its side effects before OnSuccess.
	OnBeforeSuccess func(T)

	// OnSuccess maps the inner value to the final value. When nil the inner
	// value must already be a U.
	OnSuccess func(T) (U, error)
}

// SafeRemoteCall composes a Result-returning call with a transform step.
// An inner Error is propagated unchanged. Errors returned by OnSuccess and
// panics anywhere are classified as in SafeCall.
func SafeRemoteCall[T, U any](ctx context.Context, call func(context.Context) Result[T], hooks Hooks[T, U]) (res Result[U]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Error[U](recovered(rec))
		}
	}()

	inner := call(ctx)
	if inner.IsError() {
		return Error[U](inner.Failure())
	}

	value := inner.Data()
	if hooks.OnBeforeSuccess != nil {
		hooks.OnBeforeSuccess(value)
	}

	if hooks.OnSuccess == nil {
		out, ok := any(value).(U)
		if !ok {
			var zero U
			return Error[U](failure.Generic(
				fmt.Sprintf("cannot convert %T to %T without an OnSuccess mapper", value, zero), nil))
		}
		return Success(out)
	}

	out, err := hooks.OnSuccess(value)
	if err != nil {
		return Error[U](failure.Classify(err))
	}
	return Success(out)
}

func recovered(rec any) failure.Failure {
	if err, ok := rec.(error); ok {
		f := failure.Classify(err)
		if f.Kind == failure.KindGeneric {
			f = f.WithTrace()
		}
		return f
	}
	return failure.Generic(fmt.Sprintf("panic: %v", rec), nil).WithTrace()
}

// isNil reports whether v is a nil reference. Nil slices are empty
// collections, not missing data.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
