package sigwatch

import (
	"log/slog"

	"github.com/AnatoleLucet/sigwatch/internal"
	"go.opentelemetry.io/otel/metric"
)

type Option = internal.Option

// ReactionError is a failure raised by a watcher, an instance update or a NextTick
// callback, as received by error hooks and the runtime error handler.
type ReactionError = internal.ReactionError

type ErrorCode = internal.ErrorCode

const (
	ErrorWatchGetter    = internal.ErrorWatchGetter
	ErrorWatchCallback  = internal.ErrorWatchCallback
	ErrorWatchCleanup   = internal.ErrorWatchCleanup
	ErrorScheduler      = internal.ErrorScheduler
	ErrorInstanceUpdate = internal.ErrorInstanceUpdate
	ErrorAppHandler     = internal.ErrorAppHandler
	ErrorNextTick       = internal.ErrorNextTick
)

var ErrRecursiveUpdates = internal.ErrRecursiveUpdates

const DefaultRecursionLimit = internal.DefaultRecursionLimit

func WithLogger(logger *slog.Logger) Option {
	return internal.WithLogger(logger)
}

// WithErrorHandler receives every failure no instance hook stopped.
func WithErrorHandler(fn func(err *ReactionError)) Option {
	return internal.WithErrorHandler(fn)
}

func WithWarnHandler(fn func(msg string)) Option {
	return internal.WithWarnHandler(fn)
}

// WithRecursionLimit bounds how many times a job may run within one flush.
func WithRecursionLimit(limit int) Option {
	return internal.WithRecursionLimit(limit)
}

func WithMeterProvider(provider metric.MeterProvider) Option {
	return internal.WithMeterProvider(provider)
}

func WithDiagnostics(enabled bool) Option {
	return internal.WithDiagnostics(enabled)
}
