package log

import "time"

// Logger is the structured logger every package in the module writes to.
// The zerolog adapter backs it in the CLI; tests record entries with small
// hand-written implementations.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Topic creates the "topic" field used for bus topics and subjects.
func Topic(topic string) Field {
	return Field{Key: "topic", Value: topic}
}

// Bytes creates a field holding raw text such as a sentence line.
// The value is logged as a string, not base64.
func Bytes(key string, value []byte) Field {
	return Field{Key: key, Value: string(value)}
}

// Lines creates a field holding the raw sentences of one message.
func Lines(lines []string) Field {
	return Field{Key: "lines", Value: lines}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
