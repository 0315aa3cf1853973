package internal

import (
	"iter"
	"slices"

	"github.com/google/uuid"
)

// Instance is a host unit owning watchers. Its UID is assigned in creation order,
// so a parent always sorts before its children.
type Instance struct {
	UID  int
	ID   uuid.UUID
	Name string

	rt *Runtime

	// cleanup functions to be called when the instance is unmounted
	cleanups []func()

	// error hooks, returning false stops propagation to ancestors
	errorHooks []func(error) bool

	updateJob *Job
	unmounted bool

	parent       *Instance
	prevSibling  *Instance
	nextSibling  *Instance
	childrenHead *Instance
}

func (r *Runtime) NewInstance(parent *Instance, name string) *Instance {
	r.uid++

	i := &Instance{
		UID:      r.uid,
		ID:       uuid.New(),
		Name:     name,
		rt:       r,
		cleanups: make([]func(), 0),
	}

	if parent != nil {
		parent.AddChild(i)
	}

	return i
}

// NewChild creates an instance owned by i on i's runtime, so its uid sorts after i's.
func (i *Instance) NewChild(name string) *Instance {
	return i.rt.NewInstance(i, name)
}

func (parent *Instance) AddChild(child *Instance) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (parent *Instance) removeChild(child *Instance) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else if parent.childrenHead == child {
		parent.childrenHead = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.prevSibling = nil
	child.nextSibling = nil
}

func (i *Instance) Parent() *Instance {
	return i.parent
}

// Children returns an iterator over the instance's children, most recent first.
func (i *Instance) Children() iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		child := i.childrenHead

		for child != nil {
			if !yield(child) {
				return
			}

			child = child.nextSibling
		}
	}
}

// Unmount tears down the children then runs the instance's cleanups,
// which stops every watcher registered for it. It is idempotent.
func (i *Instance) Unmount() {
	if i.unmounted {
		return
	}
	i.unmounted = true

	if i.parent != nil {
		i.parent.removeChild(i)
	}

	if i.updateJob != nil {
		i.updateJob.Flags.Set(JobDisposed)
	}

	for _, child := range slices.Collect(i.Children()) {
		child.Unmount()
	}
	i.childrenHead = nil

	for j := 0; j < len(i.cleanups); j++ {
		i.cleanups[j]()
	}
	i.cleanups = nil
}

func (i *Instance) Unmounted() bool {
	return i.unmounted
}

func (i *Instance) OnCleanup(fn func()) {
	i.cleanups = append(i.cleanups, fn)
}

// OnErrorCaptured adds a hook receiving failures raised in this instance or its descendants.
func (i *Instance) OnErrorCaptured(fn func(err error) bool) {
	i.errorHooks = append(i.errorHooks, fn)
}

// QueueUpdate queues the instance's update job. It runs after the instance's
// pre watchers and before its children's.
func (i *Instance) QueueUpdate(fn func()) {
	if i.unmounted {
		return
	}

	if i.updateJob == nil {
		i.updateJob = &Job{ID: i.UID, Instance: i}
	}
	i.updateJob.fn = fn

	i.rt.scheduler.QueueJob(i.updateJob)
}

// FlushPre runs the instance's queued pre watchers now.
func (i *Instance) FlushPre() {
	i.rt.scheduler.FlushPreFlushCbs(i)
}
