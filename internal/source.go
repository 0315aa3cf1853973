package internal

// Source is the closed set of shapes a watcher can observe:
// SingleSource, SourceList, DeepObject and EffectSource.
type Source interface {
	shape(w *watcher) sourceShape
}

// sourceShape is what every source variant reduces to. Reading the getter under
// the watcher's effect both produces the snapshot and registers the deps.
type sourceShape struct {
	getter func() any

	// run the callback even when the snapshot is identical
	force bool

	// the snapshot is a []any compared element by element
	multi bool
}

// Readable is a single reactive value, a signal or a computed.
type Readable interface {
	Read() any
}

// SingleSource watches one reactive value, or the result of a getter when Value is nil.
type SingleSource struct {
	Value  Readable
	Getter func() any
}

func (s SingleSource) shape(w *watcher) sourceShape {
	switch {
	case s.Value != nil:
		force := false
		if sig, ok := s.Value.(*Signal); ok {
			force = sig.Shallow()
		}
		return sourceShape{force: force, getter: func() any {
			var v any
			w.call(func() { v = s.Value.Read() }, ErrorWatchGetter)
			return v
		}}

	case s.Getter != nil:
		return sourceShape{getter: func() any {
			var v any
			w.call(func() { v = s.Getter() }, ErrorWatchGetter)
			return v
		}}
	}

	return invalidSource(w, "single source has neither a value nor a getter")
}

// SourceList watches several sources at once, the snapshot is a []any.
type SourceList []Source

func (l SourceList) shape(w *watcher) sourceShape {
	shapes := make([]sourceShape, len(l))
	force := false

	for i, src := range l {
		switch src.(type) {
		case SourceList, EffectSource, nil:
			shapes[i] = invalidSource(w, "source lists only hold single sources and deep objects")
		default:
			shapes[i] = src.shape(w)
		}
		force = force || shapes[i].force
	}

	return sourceShape{
		force: force,
		multi: true,
		getter: func() any {
			values := make([]any, len(shapes))
			for i, s := range shapes {
				values[i] = s.getter()
			}
			return values
		},
	}
}

// DeepObject watches a store and everything nested in it. Its snapshot is the
// store itself, so every change re-runs the callback.
type DeepObject struct {
	Store *Store
}

func (d DeepObject) shape(w *watcher) sourceShape {
	if d.Store == nil {
		return invalidSource(w, "deep object source has no store")
	}

	return sourceShape{
		force: true,
		getter: func() any {
			switch {
			case w.deep.Enabled():
				// traversed by the deep getter wrapping this one
				return d.Store
			case w.deep == DeepFalse:
				return Traverse(d.Store, 1)
			}
			return Traverse(d.Store, DepthInfinite)
		},
	}
}

// EffectSource is an effect-only watch body: it is re-run whenever what it read changes.
type EffectSource func(onCleanup OnCleanup)

func (e EffectSource) shape(w *watcher) sourceShape {
	return sourceShape{getter: func() any {
		if len(w.cleanups) > 0 {
			w.rt.tracker.RunUntracked(w.runCleanups)
		}

		w.call(func() { e(w.onCleanup) }, ErrorWatchCallback)
		return nil
	}}
}

func invalidSource(w *watcher, reason string) sourceShape {
	w.rt.warn("invalid watch source", "reason", reason)
	return sourceShape{getter: func() any { return nil }}
}
