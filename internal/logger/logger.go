// Package logger builds the zerolog logger shared by the service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger for the given environment. Development gets a human
// readable console writer; every other environment logs JSON with callers.
func New(environment, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, environment, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if environment == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Str("environment", environment)
	if environment == "production" || environment == "staging" {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ParseLevel accepts zerolog names ("debug") and the "DebugLevel" spelling.
// Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(level), "Level"))
	parsed, err := zerolog.ParseLevel(normalized)
	if err != nil || normalized == "" {
		return zerolog.InfoLevel
	}
	return parsed
}
