// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Pretty writes human-readable console output instead of JSON.
	Pretty  bool
	Service string
	// Out defaults to stderr.
	Out io.Writer
}

// New returns a logger tagged with the service name and a timestamp. An
// unknown level falls back to info and is reported on the returned logger.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	level, err := ParseLevel(opts.Level)
	log := zerolog.New(out).With().Timestamp().Str("service", opts.Service).Logger().Level(level)
	if err != nil {
		log.Warn().Err(err).Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return log
}

// ParseLevel parses a level name case-insensitively. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, err
	}
	return level, nil
}
