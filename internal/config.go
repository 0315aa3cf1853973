package internal

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DefaultRecursionLimit is how many times a single job may run within one flush
// before it is considered a runaway update loop.
const DefaultRecursionLimit = 100

type Config struct {
	Logger *slog.Logger

	// ErrorHandler receives reaction failures no instance hook stopped.
	// When nil they are logged.
	ErrorHandler func(err *ReactionError)

	// WarnHandler receives misuse diagnostics. When nil they are logged.
	WarnHandler func(msg string)

	RecursionLimit int
	MeterProvider  metric.MeterProvider

	// Diagnostics enables misuse warnings.
	Diagnostics bool
}

type Option func(*Config)

func DefaultConfig() Config {
	return Config{
		Logger:         slog.Default(),
		RecursionLimit: DefaultRecursionLimit,
		MeterProvider:  otel.GetMeterProvider(),
		Diagnostics:    true,
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func WithErrorHandler(fn func(err *ReactionError)) Option {
	return func(c *Config) { c.ErrorHandler = fn }
}

func WithWarnHandler(fn func(msg string)) Option {
	return func(c *Config) { c.WarnHandler = fn }
}

func WithRecursionLimit(limit int) Option {
	return func(c *Config) {
		if limit > 0 {
			c.RecursionLimit = limit
		}
	}
}

func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *Config) {
		if provider != nil {
			c.MeterProvider = provider
		}
	}
}

func WithDiagnostics(enabled bool) Option {
	return func(c *Config) { c.Diagnostics = enabled }
}
