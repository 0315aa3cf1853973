package sigwatch

import (
	"github.com/AnatoleLucet/sigwatch/internal"
	"github.com/google/uuid"
)

// Instance is a host unit owning watchers, like a component. Watchers registered
// with WithInstance run in instance creation order and stop when it unmounts.
type Instance struct {
	inst *internal.Instance
}

func NewInstance(name string) *Instance {
	return &Instance{
		internal.GetRuntime().NewInstance(nil, name),
	}
}

// NewChild creates an instance owned by i. It is unmounted with i.
func (i *Instance) NewChild(name string) *Instance {
	return &Instance{
		i.inst.NewChild(name),
	}
}

func (i *Instance) UID() int { return i.inst.UID }
func (i *Instance) ID() uuid.UUID { return i.inst.ID }
func (i *Instance) Name() string { return i.inst.Name }
func (i *Instance) Unmounted() bool { return i.inst.Unmounted() }

// Unmount tears down the children then the instance, stopping every watcher registered for them.
func (i *Instance) Unmount() { i.inst.Unmount() }

// Add a cleanup function to be called when the instance is unmounted.
func (i *Instance) OnCleanup(fn func()) { i.inst.OnCleanup(fn) }

// OnErrorCaptured adds a hook receiving failures raised in this instance or its
// descendants. Returning false stops the error from reaching ancestors and the runtime handler.
func (i *Instance) OnErrorCaptured(fn func(err *ReactionError) bool) {
	i.inst.OnErrorCaptured(func(err error) bool {
		return fn(err.(*ReactionError))
	})
}

// QueueUpdate queues fn as the instance's update, run after the instance's pre
// watchers and before its children's.
func (i *Instance) QueueUpdate(fn func()) { i.inst.QueueUpdate(fn) }

// FlushPre runs the instance's queued pre watchers now.
func (i *Instance) FlushPre() { i.inst.FlushPre() }
