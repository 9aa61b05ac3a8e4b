package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option is a functional option for configuring the Observer.
type Option func(*config)

type config struct {
	format   Format
	level    slog.Level
	output   io.Writer
	colors   bool
	handlers []slog.Handler
	logger   *slog.Logger // If provided, used as is
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithColors forces ANSI colors on. Without it colors are enabled only when
// the output is a terminal. Ignored for FormatJSON.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
	}
}

// WithHandlers adds handlers that receive every record next to the main one.
func WithHandlers(handlers ...slog.Handler) Option {
	return func(c *config) {
		c.handlers = append(c.handlers, handlers...)
	}
}

// WithLogger uses an existing slog.Logger instead of building handlers.
// It takes precedence over every other option.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: GetFormatFromEnv(),
		level:  GetLogLevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
