package log

var (
	_ Logger = NoopLogger{}
	_ Logger = (*ZerologAdapter)(nil)
)

// NoopLogger implements Logger by discarding all log messages.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// Debug discards the message.
func (NoopLogger) Debug(string, ...Field) {}

// Info discards the message.
func (NoopLogger) Info(string, ...Field) {}

// Warn discards the message.
func (NoopLogger) Warn(string, ...Field) {}

// Error discards the message.
func (NoopLogger) Error(string, ...Field) {}
