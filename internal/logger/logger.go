// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colored tint logger for development and a JSON logger elsewhere.
// An empty env counts as development.
func New(env, level string) *slog.Logger {
	return newLogger(os.Stdout, env, level)
}

func newLogger(w io.Writer, env, level string) *slog.Logger {
	if IsDevelopment(env) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      parseLevel(level, slog.LevelDebug),
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level, slog.LevelInfo),
	}))
}

// IsDevelopment reports whether env names a development environment.
func IsDevelopment(env string) bool {
	return env == "" || strings.EqualFold(env, "development") || strings.EqualFold(env, "dev")
}

func parseLevel(s string, def slog.Level) slog.Level {
	if s == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return def
	}
	return l
}
