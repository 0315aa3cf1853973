package internal

// subscriber is anything that re-evaluates when its deps change (effects, computeds).
type subscriber interface {
	node() *subscriberNode
	notify()
}

// subscriberNode holds the dependency bookkeeping shared by subscribers.
type subscriberNode struct {
	flags EffectFlags
	deps  []*Link
}

// prepareDeps marks every current link as stale before an evaluation,
// links read again during the evaluation get their version back.
func (n *subscriberNode) prepareDeps() {
	for _, l := range n.deps {
		l.version = -1
		l.prevActive = l.dep.activeLink
		l.dep.activeLink = l
	}
}

// cleanupDeps drops links that were not read during the last evaluation.
func (n *subscriberNode) cleanupDeps() {
	kept := n.deps[:0]
	for _, l := range n.deps {
		if l.version == -1 {
			l.dep.removeSub(l)
		} else {
			kept = append(kept, l)
		}

		l.dep.activeLink = l.prevActive
		l.prevActive = nil
	}

	clear(n.deps[len(kept):])
	n.deps = kept
}

func (n *subscriberNode) unlinkDeps() {
	for _, l := range n.deps {
		l.dep.removeSub(l)
	}
	n.deps = nil
}

// dirty reports whether any dep changed since the last evaluation.
func (n *subscriberNode) dirty() bool {
	if n.flags.has(EffectDirty) {
		return true
	}

	for _, l := range n.deps {
		if l.dep.version != l.version {
			return true
		}

		if c := l.dep.computed; c != nil {
			c.refresh()
			if l.dep.version != l.version {
				return true
			}
		}
	}

	return false
}
