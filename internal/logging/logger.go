// Package logging configures the process-wide slog logger.
//
// Records are rendered by charmbracelet/log, which implements slog.Handler:
// colored text on terminals, or JSON for machine parsing.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

var (
	Levels  = []string{"debug", "info", "warn", "error"}
	Formats = []string{"text", "json"}
)

// Setup installs a logger writing to stderr as the slog default.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := charmlog.Options{
		Level:           parseLevel(level),
		ReportTimestamp: true,
	}
	if strings.ToLower(format) == "json" {
		opts.Formatter = charmlog.JSONFormatter
	}
	return slog.New(charmlog.NewWithOptions(w, opts))
}

// Check reports an unknown level or format.
func Check(level, format string) error {
	if !oneOf(level, Levels) && strings.ToLower(level) != "warning" {
		return fmt.Errorf("unknown log level %q (expected one of %s)", level, strings.Join(Levels, ", "))
	}
	if !oneOf(format, Formats) {
		return fmt.Errorf("unknown log format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// WithFields returns base with additional structured fields. A nil base
// means the default logger.
func WithFields(base *slog.Logger, args ...any) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(args...)
}

func parseLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func oneOf(v string, set []string) bool {
	v = strings.ToLower(v)
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
