package ports

import "github.com/bft-labs/aisdecoder/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured logging key-value pair.
type Field = log.Field

// Field constructors.
var (
	String   = log.String
	Topic    = log.Topic
	Lines    = log.Lines
	Bytes    = log.Bytes
	Int      = log.Int
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
