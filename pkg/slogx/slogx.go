package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how the service logger is built.
type Config struct {
	Service string
	Version string
	Env     string    // "dev" enables source locations
	Level   string    // "debug", "info", "warn", "error"
	Format  string    // "json" (default) or "text"
	Writer  io.Writer // defaults to os.Stdout
}

// New builds the service logger with service, version, and env attached to
// every record, and installs it as the process default so code without a
// contextual logger still emits tagged records.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     Level(cfg.Level),
		AddSource: cfg.Env == "dev",
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	slog.SetDefault(logger)
	return logger
}

// Level maps a config string to a slog.Level. Unknown values fall back to
// info.
func Level(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
