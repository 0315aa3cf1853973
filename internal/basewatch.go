package internal

type OnCleanup func(fn func())

type WatchCallback func(value, oldValue any, onCleanup OnCleanup)

// WatchScheduler decides when a triggered job runs. isFirstRun is true for
// the initial run of an effect-only watcher.
type WatchScheduler func(job *Job, isFirstRun bool)

// CallFunc runs user code on behalf of a watcher and reports whether it completed.
type CallFunc func(fn func(), code ErrorCode) bool

// Deep is the deep-watch option: unset, off, or a traversal depth.
type Deep int

const (
	DeepUnset Deep = 0
	DeepFalse Deep = -1
	DeepTrue  Deep = DepthInfinite
)

func (d Deep) Enabled() bool {
	return d > 0
}

type WatchOptions struct {
	Immediate bool
	Deep      Deep
	Once      bool
	Flush     FlushMode
	Instance  *Instance

	Call       CallFunc
	Scheduler  WatchScheduler
	AugmentJob func(job *Job)
}

type watcher struct {
	rt *Runtime

	cb   WatchCallback
	call CallFunc
	deep Deep
	once bool

	effect *Effect
	job    *Job
	handle *WatchHandle

	force    bool
	multi    bool
	oldValue any
	hasOld   bool

	cleanups []func()

	// set while the immediate run evaluates, it does not count for once
	immediateRun bool

	// re-entrance guard for jobs run synchronously at trigger time
	running bool
	rerun   bool
}

// BaseWatch registers source with the dependency engine. Without a callback the
// source must be an EffectSource, which is re-run on change. With a callback the
// source is evaluated on change and the callback receives the new and previous snapshots.
func (r *Runtime) BaseWatch(source Source, cb WatchCallback, opts WatchOptions) *WatchHandle {
	w := &watcher{
		rt:   r,
		cb:   cb,
		call: opts.Call,
		deep: opts.Deep,
		once: opts.Once && cb != nil,
	}
	if w.call == nil {
		w.call = func(fn func(), _ ErrorCode) bool {
			fn()
			return true
		}
	}

	_, isEffect := source.(EffectSource)
	switch {
	case source == nil:
		source = SingleSource{}
	case cb == nil && !isEffect:
		r.warn("watch source without a callback only tracks its reads")
	case cb != nil && isEffect:
		r.warn("effect source given a callback, the callback only sees nil values")
	}

	shape := source.shape(w)
	getter := shape.getter
	w.force = shape.force
	w.multi = shape.multi

	if cb != nil && w.deep.Enabled() {
		base, depth := getter, int(w.deep)
		getter = func() any { return Traverse(base(), depth) }
	}

	w.handle = &WatchHandle{w: w}
	w.job = NewJob(func() { w.run(false) })
	if opts.AugmentJob != nil {
		opts.AugmentJob(w.job)
	}

	w.effect = r.NewEffect(getter)
	w.effect.onStop = w.runCleanups

	if scheduler := opts.Scheduler; scheduler != nil {
		w.effect.scheduler = func() { scheduler(w.job, false) }
	} else {
		w.effect.scheduler = w.job.Run
	}

	switch {
	case cb != nil && opts.Immediate:
		w.immediateRun = true
		w.run(true)
	case cb != nil:
		w.oldValue = w.effect.Run()
		w.hasOld = true
	case opts.Scheduler != nil:
		opts.Scheduler(w.job, true)
	default:
		w.effect.Run()
	}

	return w.handle
}

// run is the job body. force skips the dirty check. A run requested while one is
// in progress is replayed after it, bounded by the recursion limit.
func (w *watcher) run(force bool) {
	if !w.effect.Active() || (!force && !w.effect.Dirty()) {
		return
	}

	if w.running {
		w.rerun = true
		return
	}

	w.running = true
	defer func() {
		w.running = false
		w.rerun = false
	}()

	for pass := 1; ; pass++ {
		w.rerun = false
		w.evaluate(force)
		force = false

		if !w.rerun || !w.effect.Active() {
			return
		}

		if pass >= w.rt.config.RecursionLimit {
			w.rt.errors.Handle(ErrRecursiveUpdates, w.job.Instance, ErrorScheduler)
			return
		}
	}
}

func (w *watcher) evaluate(force bool) {
	immediate := w.immediateRun
	w.immediateRun = false

	if !w.effect.Active() || (!force && !w.effect.Dirty()) {
		return
	}

	if w.cb == nil {
		w.effect.Run()
		return
	}

	value := w.effect.Run()
	if !w.deep.Enabled() && !w.force && !w.changed(value) {
		return
	}

	w.runCleanups()

	old := w.previous()
	w.oldValue = value
	w.hasOld = true

	ok := w.call(func() { w.cb(value, old, w.onCleanup) }, ErrorWatchCallback)
	if ok && w.once && !immediate {
		w.handle.Stop()
	}
}

func (w *watcher) changed(value any) bool {
	if !w.hasOld {
		return true
	}

	if !w.multi {
		return hasChanged(value, w.oldValue)
	}

	values, olds := value.([]any), w.oldValue.([]any)
	for i := range values {
		if hasChanged(values[i], olds[i]) {
			return true
		}
	}

	return false
}

// previous is the old value handed to the callback, nil (an empty list for
// source lists) before the first change.
func (w *watcher) previous() any {
	if w.hasOld {
		return w.oldValue
	}

	if w.multi {
		return []any{}
	}

	return nil
}

func (w *watcher) onCleanup(fn func()) {
	w.cleanups = append(w.cleanups, fn)
}

func (w *watcher) runCleanups() {
	cleanups := w.cleanups
	w.cleanups = nil

	for _, fn := range cleanups {
		w.call(fn, ErrorWatchCleanup)
	}
}

// WatchHandle controls a registered watcher.
type WatchHandle struct {
	w *watcher
}

// Stop detaches the watcher from its deps and runs its pending cleanups.
// It is idempotent; a job already queued for it will not run.
func (h *WatchHandle) Stop() {
	h.w.effect.Stop()
	h.w.job.Flags.Set(JobDisposed)
}

func (h *WatchHandle) Stopped() bool {
	return !h.w.effect.Active()
}

// Run forces a re-evaluation now. It does nothing once stopped.
func (h *WatchHandle) Run() {
	if h.Stopped() {
		return
	}

	h.w.run(true)
}

// Pause holds triggers until Resume, which replays one if any arrived.
func (h *WatchHandle) Pause() {
	h.w.effect.Pause()
}

func (h *WatchHandle) Resume() {
	h.w.effect.Resume()
}

// Job returns the job the watcher submits to the scheduler.
func (h *WatchHandle) Job() *Job {
	return h.w.job
}
