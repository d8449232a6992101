package postgresengine

// Logger interface for SQL query logging, operational metrics, warnings, and
// error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithTableName sets the documents table name for the Engine.
func WithTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		e.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Document counts and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}
