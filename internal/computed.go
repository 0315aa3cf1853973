package internal

// Computed is a lazily evaluated, cached derivation. It is a subscriber of the
// deps it reads and a dep of whoever reads it.
type Computed struct {
	subscriberNode

	rt  *Runtime
	dep *Dep

	fn        func() any
	value     any
	evaluated bool
}

func (r *Runtime) NewComputed(fn func() any) *Computed {
	c := &Computed{
		rt:  r,
		dep: newDep(),
		fn:  fn,
	}
	c.flags = EffectActive | EffectTracking | EffectDirty
	c.dep.computed = c

	return c
}

func (c *Computed) node() *subscriberNode {
	return &c.subscriberNode
}

// notify marks the computed dirty and forwards the notification to its readers,
// its own version only moves once it is re-evaluated to a different value.
func (c *Computed) notify() {
	if c.flags.has(EffectDirty) || c.flags.has(EffectRunning) {
		return
	}

	c.flags.set(EffectDirty)
	c.dep.notify(c.rt)
}

// Read the current value, tracking the dependency if within a reactive context.
func (c *Computed) Read() any {
	c.refresh()
	c.dep.track(c.rt)
	return c.value
}

func (c *Computed) Peek() any {
	c.refresh()
	return c.value
}

func (c *Computed) refresh() {
	if c.flags.has(EffectRunning) || !c.dirty() {
		return
	}

	c.flags.set(EffectRunning)
	c.prepareDeps()

	defer func() {
		c.cleanupDeps()
		c.flags.clear(EffectRunning | EffectDirty)
	}()

	var value any
	c.rt.tracker.RunWithSubscriber(c, func() { value = c.fn() })

	if !c.evaluated || hasChanged(c.value, value) {
		c.value = value
		c.evaluated = true
		c.dep.version++
	}
}
