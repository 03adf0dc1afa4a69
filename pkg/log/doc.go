// Package log provides the logging port used by the repository and its
// adapters.
//
// The repository never surfaces cache-mirroring failures through its
// results; they are reported here instead, so wiring a real logger matters
// in production:
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	repo, err := repository.New(cfg, repository.WithLogger(logger))
//
// NoopLogger discards everything and is the default.
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
