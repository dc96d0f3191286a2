package ports

import "time"

// Logger is the structured logger every layer writes through. The CLI
// backs it with zerolog; the library facade defaults to a no-op.
type Logger interface {
	// Debug logs per-message detail such as individual exchanges.
	Debug(msg string, fields ...Field)

	// Info logs session, transfer and lifecycle milestones.
	Info(msg string, fields ...Field)

	// Warn logs recoverable failures: rejected uploads, dropped peers.
	Warn(msg string, fields ...Field)

	// Error logs failures that end a component.
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field, used for byte counts.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates a uint64 field, used for exchange counters.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// SessionID tags a line with the streaming session it belongs to.
func SessionID(id uint64) Field {
	return Field{Key: "session", Value: id}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
