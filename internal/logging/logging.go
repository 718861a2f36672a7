package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. LOG_FORMAT=console switches to the
// human-readable writer for local runs; the default is JSON.
func New() zerolog.Logger {
	var logger zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.With().Timestamp().Logger()
}
