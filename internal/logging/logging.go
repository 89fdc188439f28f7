// Package logging builds the structured logger used across the
// pipeline. Output goes to stderr so report text on stdout stays
// machine-readable.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the console logger. Verbose lowers the level to debug,
// which includes per-transaction pattern-match decisions.
func New(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
