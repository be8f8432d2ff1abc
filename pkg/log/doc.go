// Package log is the structured logging layer shared by the decoder
// packages and the CLI.
//
// Components take a [Logger] and attach [Field] values built with the
// helpers in this package ([Topic] and [Lines] for bus topics and raw
// sentences, [Err] for errors). The CLI builds a zerolog-backed logger:
//
//	logger, err := log.New(log.Options{
//	    Level:  "info",
//	    Format: log.FormatJSON,
//	    File:   "/var/log/aisdecoder.log", // rotated by size
//	})
//
// Library users can wrap an existing zerolog.Logger with
// [NewZerologAdapterWithLogger] or implement [Logger] themselves. Packages
// fall back to [Discard] when no logger is given.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
