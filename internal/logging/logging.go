// Package logging sets up the process-wide slog logger and hands out
// component-scoped children of it.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Init.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Init installs a slog default logger writing to w at level. A nil w means
// os.Stderr. Unknown formats fall back to text.
func Init(level slog.Level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps debug, info, warn or error (any case) to a slog.Level.
// An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// ValidFormat reports whether format is one Init understands.
func ValidFormat(format string) bool {
	return strings.EqualFold(format, FormatText) || strings.EqualFold(format, FormatJSON)
}

// New returns the default logger tagged with component.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
