// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output format ("json" or "console").
func Setup(level, format string) error {
	return setup(level, format, os.Stderr)
}

func setup(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(format) {
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case "", "console":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}).
			With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}
