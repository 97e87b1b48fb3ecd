package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger: JSON in prod, console-friendly elsewhere.
func New(service, env string) zerolog.Logger {
	var logger zerolog.Logger
	if env == "prod" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	}

	return logger.With().
		Timestamp().
		Str("service", service).
		Logger()
}
