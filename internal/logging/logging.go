// Package logging sets up the file logger. The terminal belongs to the UI,
// so nothing is ever written to stdout or stderr once the program runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Init opens path for appending and installs a logger writing to it as the
// global zerolog logger. An empty path discards all output.
func Init(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		logger := zerolog.Nop()
		log.Logger = logger
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logger := New(f, level)
	log.Logger = logger
	return logger, f, nil
}

// New builds a logger writing JSON lines to w.
func New(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
