package internal

import (
	"log/slog"
)

type Runtime struct {
	config Config
	logger *slog.Logger

	tracker   *Tracker
	batcher   *Batcher
	scheduler *Scheduler
	errors    *ErrorHandler
	metrics   *runtimeMetrics

	// last assigned instance uid, uids start at 1
	uid int
}

func NewRuntime(opts ...Option) *Runtime {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	r := &Runtime{
		config:  config,
		logger:  config.Logger,
		tracker: NewTracker(),
		batcher: NewBatcher(),
	}

	r.metrics = newRuntimeMetrics(config.MeterProvider, r.logger)
	r.errors = NewErrorHandler(r)
	r.scheduler = NewScheduler(r)

	return r
}

func (r *Runtime) Config() Config {
	return r.config
}

func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

func (r *Runtime) Scheduler() *Scheduler {
	return r.scheduler
}

func (r *Runtime) Errors() *ErrorHandler {
	return r.errors
}

// Flush runs every pending job until the queues are empty.
func (r *Runtime) Flush() {
	r.scheduler.Flush()
}

func (r *Runtime) NextTick(fn func()) {
	r.scheduler.NextTick(fn)
}

func (r *Runtime) Batch(fn func()) {
	r.batcher.Batch(fn)
}

func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// warn reports a non-fatal misuse diagnostic.
func (r *Runtime) warn(msg string, attrs ...any) {
	if !r.config.Diagnostics {
		return
	}

	if r.config.WarnHandler != nil {
		r.config.WarnHandler(msg)
		return
	}

	r.logger.Warn(msg, attrs...)
}
