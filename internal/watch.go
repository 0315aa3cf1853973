package internal

import "fmt"

// FlushMode decides when a triggered watcher runs relative to the flush.
type FlushMode int

const (
	FlushPre FlushMode = iota
	FlushPost
	FlushSync
)

func (m FlushMode) String() string {
	switch m {
	case FlushPre:
		return "pre"
	case FlushPost:
		return "post"
	case FlushSync:
		return "sync"
	}
	return fmt.Sprintf("FlushMode(%d)", int(m))
}

// DoWatch normalizes opts into a scheduling policy and registers the watcher.
// Watchers owned by an instance are stopped when it unmounts.
func (r *Runtime) DoWatch(source Source, cb WatchCallback, opts WatchOptions) *WatchHandle {
	opts = r.normalizeWatchOptions(cb != nil, opts)

	inst := opts.Instance
	if inst != nil && inst.Unmounted() {
		r.warn("watcher registered on an unmounted instance", "instance", inst.Name)
	}

	h := r.BaseWatch(source, cb, opts)

	if inst != nil {
		if inst.Unmounted() {
			h.Stop()
		} else {
			inst.OnCleanup(h.Stop)
		}
	}

	return h
}

// normalizeWatchOptions drops the callback-only options of effect watchers and
// derives call, scheduler and augmentJob.
func (r *Runtime) normalizeWatchOptions(hasCallback bool, opts WatchOptions) WatchOptions {
	if !hasCallback {
		if opts.Immediate {
			r.warn(`watch option "immediate" is only respected with a callback`)
			opts.Immediate = false
		}
		if opts.Deep != DeepUnset {
			r.warn(`watch option "deep" is only respected with a callback`)
			opts.Deep = DeepUnset
		}
		if opts.Once {
			r.warn(`watch option "once" is only respected with a callback`)
			opts.Once = false
		}
	}

	inst := opts.Instance
	opts.Call = func(fn func(), code ErrorCode) bool {
		return r.errors.Call(fn, inst, code)
	}

	var isPre bool
	opts.Scheduler, isPre = r.flushScheduler(opts.Flush)

	opts.AugmentJob = func(job *Job) {
		if hasCallback {
			job.Flags.Set(JobAllowRecurse)
		}

		if isPre {
			job.Flags.Set(JobPre)
			if inst != nil {
				job.ID = inst.UID
				job.Instance = inst
			}
		}
	}

	return opts
}

// flushScheduler maps a flush mode to a scheduler, nil meaning run at trigger time.
func (r *Runtime) flushScheduler(mode FlushMode) (WatchScheduler, bool) {
	switch mode {
	case FlushSync:
		return nil, false

	case FlushPost:
		return func(job *Job, _ bool) {
			r.scheduler.QueuePostFlushCb(job)
		}, false

	case FlushPre:
	default:
		r.warn("unknown flush mode, using pre", "flush", mode.String())
	}

	return func(job *Job, isFirstRun bool) {
		if isFirstRun {
			job.Run()
		} else {
			r.scheduler.QueueJob(job)
		}
	}, true
}
