// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the application logger. It is usable before Init is called.
var L = slog.Default()

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values fall back to info.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// New builds a JSON logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Init installs a JSON logger on stdout as L and as the slog default.
// Call once at startup after the configuration is loaded.
func Init(levelStr string) *slog.Logger {
	level, ok := ParseLevel(levelStr)
	L = New(os.Stdout, level)
	slog.SetDefault(L)

	if !ok {
		L.Warn("invalid LOG_LEVEL, defaulting to info", "configuredLevel", levelStr)
	}
	return L
}
