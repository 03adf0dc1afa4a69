package log

import (
	"fmt"
	"time"
)

// Logger is the logging port used by repositories, the refresher and the
// CLI. ZerologAdapter is the production implementation and Noop discards
// everything.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err attaches err under "error". A nil error adds nothing.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Op names the repository operation a log line belongs to.
func Op(name string) Field {
	return Field{Key: "op", Value: name}
}

// Strategy records a repository strategy by its textual name.
func Strategy(s fmt.Stringer) Field {
	return Field{Key: "strategy", Value: s}
}

// Source names the data source (remote or local) an error came from.
func Source(name string) Field {
	return Field{Key: "source", Value: name}
}

// Items records how many entities a call returned or stored.
func Items(n int) Field {
	return Field{Key: "items", Value: n}
}

// Failure attaches a classified failure under "failure".
func Failure(err error) Field {
	return Field{Key: "failure", Value: err}
}

// Config dumps a configuration value. Callers redact secrets first.
func Config(v any) Field {
	return Field{Key: "config", Value: v}
}
