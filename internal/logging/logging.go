// Package logging configures the process-wide zerolog logger, the
// structured-logging library the surrounding pack standardizes on.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to stdout, in JSON for format
// "json" and in zerolog's human-readable console format for anything
// else. level accepts zerolog's level names (debug, info, warn, error).
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	return zerolog.New(writer).With().Timestamp().Logger()
}
