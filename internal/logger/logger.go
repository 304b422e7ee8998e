// Package logger configures the application's zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the root logger.  The dev environment gets a human friendly
// console writer; every other environment logs JSON lines to stdout.  An
// unknown level falls back to info.
func New(env, level string) zerolog.Logger {
	return NewWithWriter(env, level, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env, level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := w
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "theater-service").Logger()
}
