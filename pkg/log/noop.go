package log

// NoopLogger is the logger devsync.New, the bridge and the bundled adapters
// fall back to when the caller passes none. Every record is dropped.
type NoopLogger struct{}

// NewNoopLogger returns the fallback logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(msg string, fields ...Field) {}
func (NoopLogger) Info(msg string, fields ...Field)  {}
func (NoopLogger) Warn(msg string, fields ...Field)  {}
func (NoopLogger) Error(msg string, fields ...Field) {}

var _ Logger = NoopLogger{}
