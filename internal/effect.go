package internal

// Effect is a tracked computation. When one of its deps changes it is notified,
// collected by the batcher, and then either handed to its scheduler or re-run.
type Effect struct {
	subscriberNode

	rt *Runtime

	fn        func() any
	scheduler func()
	onStop    func()

	// set when a trigger arrived while paused
	pausedTrigger bool
}

func (r *Runtime) NewEffect(fn func() any) *Effect {
	e := &Effect{
		rt: r,
		fn: fn,
	}

	// a new effect has never run, it is dirty until its first evaluation
	e.flags = EffectActive | EffectTracking | EffectDirty

	return e
}

func (e *Effect) node() *subscriberNode {
	return &e.subscriberNode
}

func (e *Effect) notify() {
	if e.flags.has(EffectRunning) {
		e.rt.logger.Debug("effect notified by its own evaluation, ignoring")
		return
	}

	if e.flags.has(EffectNotified) {
		return
	}

	e.flags.set(EffectNotified)
	e.rt.batcher.add(e)
}

func (e *Effect) trigger() {
	if e.flags.has(EffectPaused) {
		e.pausedTrigger = true
		return
	}

	if e.scheduler != nil {
		e.scheduler()
		return
	}

	e.RunIfDirty()
}

// Run evaluates the effect, recording every dep read during the evaluation.
func (e *Effect) Run() any {
	if !e.flags.has(EffectActive) {
		return e.fn()
	}

	e.flags.set(EffectRunning)
	e.prepareDeps()

	defer func() {
		e.cleanupDeps()
		e.flags.clear(EffectRunning | EffectDirty)

		// stopped during its own evaluation
		if !e.flags.has(EffectActive) {
			e.unlinkDeps()
		}
	}()

	var value any
	e.rt.tracker.RunWithSubscriber(e, func() { value = e.fn() })
	return value
}

func (e *Effect) RunIfDirty() {
	if e.Dirty() {
		e.Run()
	}
}

// Dirty reports whether the effect never ran or a dep changed since its last run.
func (e *Effect) Dirty() bool {
	return e.dirty()
}

func (e *Effect) Active() bool {
	return e.flags.has(EffectActive)
}

// Stop unsubscribes the effect from all its deps. It is idempotent.
func (e *Effect) Stop() {
	if !e.flags.has(EffectActive) {
		return
	}
	e.flags.clear(EffectActive)

	// links are dropped once the evaluation completes
	if !e.flags.has(EffectRunning) {
		e.unlinkDeps()
	}

	if e.onStop != nil {
		e.onStop()
	}
}

func (e *Effect) Pause() {
	e.flags.set(EffectPaused)
}

// Resume re-enables triggers, replaying one if it arrived while paused.
func (e *Effect) Resume() {
	if !e.flags.has(EffectPaused) {
		return
	}
	e.flags.clear(EffectPaused)

	if e.pausedTrigger {
		e.pausedTrigger = false
		e.trigger()
	}
}
