// Package logging defines the logging interface used across the service
// and provides ready-made implementations.
package logging

// Logger is the minimal structured logging interface components depend on.
// Fields may be nil.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoOpLogger discards all log output. Useful as a default and in tests.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
func (NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (NoOpLogger) Error(msg string, fields map[string]interface{}) {}
