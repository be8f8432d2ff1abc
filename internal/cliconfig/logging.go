package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/aisdecoder/pkg/log"
)

// BootstrapLogger is used before the configuration is known.
func BootstrapLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// NewLogger builds the service logger from the logging settings.
func NewLogger(c Config) (*log.ZerologAdapter, error) {
	return log.New(log.Options{
		Level:     c.LogLevel,
		Format:    c.LogFormat,
		File:      c.LogFile,
		MaxSizeMB: c.LogMaxSizeMB,
		Component: "aisdecoder",
	})
}
