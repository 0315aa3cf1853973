package internal

import "reflect"

// Signal is a reactive value (a ref).
type Signal struct {
	rt  *Runtime
	dep *Dep

	value any

	// shallow signals always re-trigger watchers reading them
	shallow bool
}

func (r *Runtime) NewSignal(initial any) *Signal {
	return &Signal{
		rt:    r,
		dep:   newDep(),
		value: initial,
	}
}

func (r *Runtime) NewShallowSignal(initial any) *Signal {
	s := r.NewSignal(initial)
	s.shallow = true
	return s
}

// Read returns the current value, tracking the dependency if within a reactive context.
func (s *Signal) Read() any {
	s.dep.track(s.rt)
	return s.value
}

// Peek returns the current value without tracking.
func (s *Signal) Peek() any {
	return s.value
}

func (s *Signal) Write(v any) {
	if !hasChanged(s.value, v) {
		return
	}

	s.value = v
	s.dep.trigger(s.rt)
}

// Trigger notifies subscribers without changing the value,
// for values mutated in place behind a shallow signal.
func (s *Signal) Trigger() {
	s.dep.trigger(s.rt)
}

func (s *Signal) Shallow() bool {
	return s.shallow
}

// hasChanged compares by identity for comparable values,
// anything else is always considered changed.
func hasChanged(a, b any) (changed bool) {
	if a == nil || b == nil {
		return a != b
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return true
	}

	// comparable struct types can still hold incomparable interface values
	defer func() {
		if recover() != nil {
			changed = true
		}
	}()

	return a != b
}
