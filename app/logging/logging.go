// Package logging wraps zerolog with the LOG_STYLE / LOG_LEVEL settings.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"example/chess-history/app/config"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

var (
	mu   sync.RWMutex
	root = New(config.LogConfig{}, os.Stdout)
)

// New builds a logger writing to w. Style "json" emits JSON lines,
// anything else uses the console writer.
func New(cfg config.LogConfig, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	if !strings.EqualFold(cfg.Style, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Init replaces the process-wide logger.
func Init(cfg config.LogConfig) {
	SetRoot(New(cfg, os.Stdout))
}

func SetRoot(l Logger) {
	mu.Lock()
	root = l
	mu.Unlock()
}

func Get() *Logger {
	mu.RLock()
	l := root
	mu.RUnlock()
	return &l
}

// Named returns a child logger tagged with a component field.
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

// ParseLevel falls back to info for unknown input.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
