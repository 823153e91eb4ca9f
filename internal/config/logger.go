package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the root logger for one CLI command. Every entry carries the app and
// command names, and component loggers are derived from it with their own fields.
func NewLogger(cfg LoggerConfig, command string) zerolog.Logger {
	return newLogger(cfg, command, os.Stdout)
}

func newLogger(cfg LoggerConfig, command string, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.App != "" {
		ctx = ctx.Str("app", cfg.App)
	}
	if command != "" {
		ctx = ctx.Str("command", command)
	}

	return ctx.Logger()
}
