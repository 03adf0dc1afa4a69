package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/go-playground/validator/v10"
)

// TransportKind describes how a transport call failed.
type TransportKind int

const (
	TransportUnknown TransportKind = iota
	TransportConnectTimeout
	TransportSendTimeout
	TransportReceiveTimeout
	TransportConnectionError
	TransportCancelled
	TransportBadResponse
)

// String returns a human-readable representation of the kind.
func (k TransportKind) String() string {
	switch k {
	case TransportConnectTimeout:
		return "connect_timeout"
	case TransportSendTimeout:
		return "send_timeout"
	case TransportReceiveTimeout:
		return "receive_timeout"
	case TransportConnectionError:
		return "connection_error"
	case TransportCancelled:
		return "cancelled"
	case TransportBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// TransportError is the error a remote data source returns when a call
// fails at the transport layer. StatusCode is zero when no response was
// received.
type TransportError struct {
	Kind       TransportKind
	StatusCode int

	// Body is the raw response body, if any. A JSON object body with a
	// "message" or "error" string overrides the default failure message.
	Body []byte

	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Cause != nil:
		return fmt.Sprintf("transport %s (status %d): %v", e.Kind, e.StatusCode, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport %s (status %d)", e.Kind, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("transport %s: %v", e.Kind, e.Cause)
	default:
		return "transport " + e.Kind.String()
	}
}

// Unwrap returns the wrapped error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ClassifyTransport maps a transport error onto exactly one network Failure.
// The kind is consulted before the status code, so a connection error is
// always NoConnection whatever status it carries.
func ClassifyTransport(te *TransportError) Failure {
	if te == nil {
		return Generic("", nil)
	}

	var f Failure
	switch te.Kind {
	case TransportConnectTimeout, TransportSendTimeout, TransportReceiveTimeout:
		f = Network(CodeTimeout)
	case TransportConnectionError:
		f = Network(CodeNoConnection)
	case TransportCancelled:
		f = Network(CodeCancelled)
	default:
		f = HTTP(codeForStatus(te.StatusCode), te.StatusCode)
	}

	if msg := serverMessage(te.Body); msg != "" {
		f.Message = msg
	}
	f.Cause = te
	return f
}

// codeForStatus implements the status table. Zero means no response.
func codeForStatus(status int) Code {
	switch status {
	case 0:
		return CodeServerGeneric
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusRequestTimeout:
		return CodeRequestTimeout
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	case http.StatusInternalServerError:
		return CodeInternalServerError
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusBadGateway:
		return CodeBadGateway
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return CodeGatewayTimeout
	}
	if status >= 400 && status < 500 {
		return CodeClientError
	}
	return CodeUnclassified
}

// serverMessage extracts "message" (preferred) or "error" from a JSON object.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := obj["error"].(string); ok && msg != "" {
		return msg
	}
	return ""
}

// Classify converts any error into a Failure. It is total: errors it does
// not recognise become a generic failure carrying the original as cause.
func Classify(err error) Failure {
	if err == nil {
		return Generic("", nil)
	}

	if f, ok := As(err); ok {
		f.Message = orDefault(f.Message, f.Kind, f.Code)
		return f
	}

	var te *TransportError
	if errors.As(err, &te) {
		return ClassifyTransport(te)
	}

	if errors.Is(err, ErrNoData) {
		return NoData().WithCause(err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fromValidation(verrs)
	}

	// Context errors before net.Error: a deadline also reports Timeout().
	if errors.Is(err, context.Canceled) {
		return Network(CodeCancelled).WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Network(CodeTimeout).WithCause(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Network(CodeTimeout).WithCause(err)
	}

	if isConnectionError(err) {
		return Network(CodeNoConnection).WithCause(err)
	}

	return Generic("", err)
}

func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func fromValidation(verrs validator.ValidationErrors) Failure {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	f := Validation("", fields)
	f.Cause = verrs
	return f
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
