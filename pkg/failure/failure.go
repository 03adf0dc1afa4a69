package failure

import (
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
)

// Kind is the top-level category of a Failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindNetwork
	KindCache
	KindAuth
	KindValidation
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindNetwork:
		return "network"
	case KindCache:
		return "cache"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Code refines a network failure into the condition the transport observed.
// Failures of any other kind carry CodeNone.
type Code int

const (
	CodeNone Code = iota
	CodeTimeout
	CodeNoConnection
	CodeCancelled
	CodeUnauthorized
	CodeForbidden
	CodeNotFound
	CodeRequestTimeout
	CodeConflict
	CodeTooManyRequests
	CodeInternalServerError
	CodeNotImplemented
	CodeBadGateway
	CodeServiceUnavailable
	CodeGatewayTimeout
	CodeClientError
	CodeServerGeneric
	CodeUnclassified
)

var codeNames = map[Code]string{
	CodeNone:                "none",
	CodeTimeout:             "timeout",
	CodeNoConnection:        "no_connection",
	CodeCancelled:           "cancelled",
	CodeUnauthorized:        "unauthorized",
	CodeForbidden:           "forbidden",
	CodeNotFound:            "not_found",
	CodeRequestTimeout:      "request_timeout",
	CodeConflict:            "conflict",
	CodeTooManyRequests:     "too_many_requests",
	CodeInternalServerError: "internal_server_error",
	CodeNotImplemented:      "not_implemented",
	CodeBadGateway:          "bad_gateway",
	CodeServiceUnavailable:  "service_unavailable",
	CodeGatewayTimeout:      "gateway_timeout",
	CodeClientError:         "client_error",
	CodeServerGeneric:       "server_generic",
	CodeUnclassified:        "unclassified",
}

// String returns the snake_case name of the code.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "unknown"
}

// Failure is the single error type surfaced by the data-access core.
//
// A Failure is a value: two failures are equal when their kind, code,
// status, message, field map and cause message agree (see Equal). Trace is
// diagnostic only and never takes part in comparison.
type Failure struct {
	Kind       Kind
	Code       Code
	Message    string
	StatusCode int

	// Fields maps a field name to a validation message. Only set for
	// KindValidation.
	Fields map[string]string

	Cause error
	Trace string
}

// Error implements the error interface.
func (f Failure) Error() string {
	prefix := f.Kind.String()
	if f.Code != CodeNone {
		prefix += "/" + f.Code.String()
	}
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, f.Message, f.Cause)
	}
	return prefix + ": " + f.Message
}

// Unwrap returns the underlying cause to support errors.Is/errors.As.
func (f Failure) Unwrap() error {
	return f.Cause
}

// Is reports whether target is a Failure with the same kind and code.
// A target with CodeNone matches any code of the same kind.
func (f Failure) Is(target error) bool {
	t, ok := target.(Failure)
	if !ok {
		return false
	}
	if f.Kind != t.Kind {
		return false
	}
	return t.Code == CodeNone || f.Code == t.Code
}

// Equal compares two failures by value.
func (f Failure) Equal(other Failure) bool {
	if f.Kind != other.Kind || f.Code != other.Code ||
		f.StatusCode != other.StatusCode || f.Message != other.Message {
		return false
	}
	if !maps.Equal(f.Fields, other.Fields) {
		return false
	}
	switch {
	case f.Cause == nil && other.Cause == nil:
		return true
	case f.Cause == nil || other.Cause == nil:
		return false
	default:
		return f.Cause.Error() == other.Cause.Error()
	}
}

// WithMessage returns a copy carrying msg instead of the default message.
func (f Failure) WithMessage(msg string) Failure {
	if msg != "" {
		f.Message = msg
	}
	return f
}

// WithCause returns a copy wrapping err.
func (f Failure) WithCause(err error) Failure {
	f.Cause = err
	return f
}

// WithTrace returns a copy carrying the current goroutine's stack.
func (f Failure) WithTrace() Failure {
	f.Trace = string(debug.Stack())
	return f
}

// NoDataMessage is the message of the failure for a call that completed
// without error but produced nothing.
const NoDataMessage = "the call completed but returned no data"

// ErrNoData marks a call that completed without error but produced nothing.
// Classify maps it to NoData.
var ErrNoData = errors.New("no data returned")

// NoData creates the client-error failure for a call that returned nothing.
func NoData() Failure {
	return Network(CodeClientError).WithMessage(NoDataMessage)
}

// Network creates a network failure with the code's default message.
func Network(code Code) Failure {
	return Failure{Kind: KindNetwork, Code: code, Message: DefaultMessage(KindNetwork, code)}
}

// HTTP creates a network failure for the given status code and code.
func HTTP(code Code, status int) Failure {
	f := Network(code)
	f.StatusCode = status
	return f
}

// Cache creates a failure for a local store problem.
func Cache(msg string, cause error) Failure {
	return Failure{Kind: KindCache, Message: orDefault(msg, KindCache, CodeNone), Cause: cause}
}

// Auth creates a credential or authorization failure.
func Auth(msg string, cause error) Failure {
	return Failure{Kind: KindAuth, Message: orDefault(msg, KindAuth, CodeNone), Cause: cause}
}

// Validation creates a field-level validation failure. The fields map is
// copied.
func Validation(msg string, fields map[string]string) Failure {
	return Failure{
		Kind:    KindValidation,
		Message: orDefault(msg, KindValidation, CodeNone),
		Fields:  maps.Clone(fields),
	}
}

// Generic creates an unclassified failure.
func Generic(msg string, cause error) Failure {
	return Failure{Kind: KindGeneric, Message: orDefault(msg, KindGeneric, CodeNone), Cause: cause}
}

// As extracts a Failure from err's chain.
func As(err error) (Failure, bool) {
	var f Failure
	ok := errors.As(err, &f)
	return f, ok
}

func orDefault(msg string, kind Kind, code Code) string {
	if msg != "" {
		return msg
	}
	return DefaultMessage(kind, code)
}
