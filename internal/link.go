package internal

import "iter"

// Link connects a dependency to one of its subscribers.
type Link struct {
	dep *Dep
	sub subscriber

	// dep version seen on the subscriber's last evaluation, -1 while re-evaluating and not read yet
	version int

	// the dep's active link before this subscriber started evaluating
	prevActive *Link

	prevSub *Link
	nextSub *Link
}

// Dep is a reactive source the runtime can track reads of and trigger subscribers from.
type Dep struct {
	// incremented on every change, subscribers compare it with their link version
	version int

	// set when the dep belongs to a computed, which is refreshed before comparing versions
	computed *Computed

	// the link of the subscriber currently evaluating, avoids duplicate links per evaluation
	activeLink *Link

	subsHead *Link
	subsTail *Link
}

func newDep() *Dep {
	return &Dep{}
}

// track links the runtime's active subscriber to this dep.
func (d *Dep) track(r *Runtime) {
	if !r.tracker.ShouldTrack() {
		return
	}
	sub := r.tracker.Active()

	l := d.activeLink
	if l != nil && l.sub == sub {
		if l.version == -1 {
			l.version = d.version
		}
		return
	}

	l = &Link{dep: d, sub: sub, version: d.version, prevActive: d.activeLink}
	d.activeLink = l

	n := sub.node()
	n.deps = append(n.deps, l)
	d.addSub(l)
}

// trigger marks the dep as changed and notifies every subscriber.
func (d *Dep) trigger(r *Runtime) {
	d.version++
	d.notify(r)
}

func (d *Dep) notify(r *Runtime) {
	r.batcher.start()
	defer r.batcher.end()

	for sub := range d.Subs() {
		sub.notify()
	}
}

// Subs returns an iterator over the dep's subscribers in subscription order.
func (d *Dep) Subs() iter.Seq[subscriber] {
	return func(yield func(subscriber) bool) {
		for l := d.subsHead; l != nil; l = l.nextSub {
			if !yield(l.sub) {
				return
			}
		}
	}
}

func (d *Dep) addSub(l *Link) {
	if d.subsTail == nil {
		d.subsHead = l
		d.subsTail = l
		return
	}

	l.prevSub = d.subsTail
	d.subsTail.nextSub = l
	d.subsTail = l
}

func (d *Dep) removeSub(l *Link) {
	if l.prevSub != nil {
		l.prevSub.nextSub = l.nextSub
	} else if d.subsHead == l {
		d.subsHead = l.nextSub
	}

	if l.nextSub != nil {
		l.nextSub.prevSub = l.prevSub
	} else if d.subsTail == l {
		d.subsTail = l.prevSub
	}

	l.prevSub = nil
	l.nextSub = nil
}
