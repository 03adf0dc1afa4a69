package failure

var networkMessages = map[Code]string{
	CodeTimeout:             "the request timed out",
	CodeNoConnection:        "no network connectivity detected",
	CodeCancelled:           "the request was cancelled",
	CodeUnauthorized:        "authentication credentials were missing or incorrect",
	CodeForbidden:           "access is not allowed",
	CodeNotFound:            "the requested resource could not be found",
	CodeRequestTimeout:      "the server timed out waiting for the request",
	CodeConflict:            "conflict with current resource state",
	CodeTooManyRequests:     "rate limit exceeded",
	CodeInternalServerError: "internal server error",
	CodeNotImplemented:      "not implemented",
	CodeBadGateway:          "bad gateway",
	CodeServiceUnavailable:  "service unavailable",
	CodeGatewayTimeout:      "gateway timeout",
	CodeClientError:         "the request was rejected by the server",
	CodeServerGeneric:       "the server returned an unexpected response",
	CodeUnclassified:        "unexpected response status",
}

var kindMessages = map[Kind]string{
	KindGeneric:    "an unexpected error occurred",
	KindNetwork:    "a network error occurred",
	KindCache:      "local cache operation failed",
	KindAuth:       "authentication failed",
	KindValidation: "validation failed",
}

// DefaultMessage returns the built-in message for a kind/code pair.
func DefaultMessage(kind Kind, code Code) string {
	if kind == KindNetwork {
		if msg, ok := networkMessages[code]; ok {
			return msg
		}
	}
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return kindMessages[KindGeneric]
}
