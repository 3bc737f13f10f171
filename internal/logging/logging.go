// Package logging configures zerolog for the accelprofile binaries.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup returns a logger writing to w at the named level ("debug", "info", ...).
// Console output is used when w is a terminal-facing stream (stderr/stdout);
// any other writer receives JSON lines. An unknown level falls back to info.
func Setup(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if w == nil {
		w = os.Stderr
	}

	out := w
	if w == os.Stderr || w == os.Stdout {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(level))
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
