package domain

import "errors"

// Domain errors represent error conditions in the aisdecoder service.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("aisdecoder: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("aisdecoder: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("aisdecoder: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("aisdecoder: invalid configuration")

	// ErrConnection is returned when the bus cannot be reached or the
	// subscription cannot be established.
	ErrConnection = errors.New("aisdecoder: bus connection failed")

	// ErrPublish is returned when an outbound message could not be handed
	// to the bus.
	ErrPublish = errors.New("aisdecoder: publish failed")
)
