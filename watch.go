package sigwatch

import "github.com/AnatoleLucet/sigwatch/internal"

// AnySource is anything a watcher can observe: refs, computeds, getters and stores.
type AnySource interface {
	source() internal.Source
}

type Source[T any] interface {
	AnySource
	Get() T
}

type WatchHandle = internal.WatchHandle

type OnCleanup = internal.OnCleanup

type FlushMode = internal.FlushMode

const (
	// FlushPre runs watchers during the next Flush, before instance updates.
	FlushPre = internal.FlushPre
	// FlushPost runs watchers during the next Flush, after every instance update.
	FlushPost = internal.FlushPost
	// FlushSync runs watchers as soon as a source changes.
	FlushSync = internal.FlushSync
)

type WatchOption func(*internal.WatchOptions)

// WithImmediate runs the callback once at registration, with a zero old value.
func WithImmediate() WatchOption {
	return func(o *internal.WatchOptions) { o.Immediate = true }
}

// WithDeep reacts to changes nested anywhere in the watched value.
func WithDeep() WatchOption {
	return func(o *internal.WatchOptions) { o.Deep = internal.DeepTrue }
}

// WithDepth reacts to changes nested up to n levels in the watched value.
func WithDepth(n int) WatchOption {
	return func(o *internal.WatchOptions) {
		if n > 0 {
			o.Deep = internal.Deep(n)
		} else {
			o.Deep = internal.DeepFalse
		}
	}
}

// WithShallow limits a store watcher to its top level keys.
func WithShallow() WatchOption {
	return func(o *internal.WatchOptions) { o.Deep = internal.DeepFalse }
}

func WithFlush(mode FlushMode) WatchOption {
	return func(o *internal.WatchOptions) { o.Flush = mode }
}

// WithOnce stops the watcher after its first completed callback.
func WithOnce() WatchOption {
	return func(o *internal.WatchOptions) { o.Once = true }
}

// WithInstance binds the watcher to inst: it is ordered by the instance and stopped on unmount.
func WithInstance(inst *Instance) WatchOption {
	return func(o *internal.WatchOptions) {
		if inst != nil {
			o.Instance = inst.inst
		}
	}
}

func doWatch(src internal.Source, cb internal.WatchCallback, opts []WatchOption) *WatchHandle {
	var options internal.WatchOptions
	for _, opt := range opts {
		opt(&options)
	}

	return internal.GetRuntime().DoWatch(src, cb, options)
}

// Watch calls cb with the new and previous value whenever src changes.
func Watch[T any](src Source[T], cb func(value, oldValue T, onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	return doWatch(src.source(), func(value, oldValue any, onCleanup internal.OnCleanup) {
		cb(as[T](value), as[T](oldValue), onCleanup)
	}, opts)
}

// WatchList calls cb whenever any of sources changes, with their values in order.
// The first call of an immediate watcher receives an empty oldValues.
func WatchList(sources []AnySource, cb func(values, oldValues []any, onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	list := make(internal.SourceList, len(sources))
	for i, src := range sources {
		list[i] = src.source()
	}

	return doWatch(list, func(value, oldValue any, onCleanup internal.OnCleanup) {
		cb(as[[]any](value), as[[]any](oldValue), onCleanup)
	}, opts)
}

// WatchStore calls cb whenever store or anything nested in it changes.
func WatchStore(store *Store, cb func(store *Store, onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	return doWatch(store.source(), func(_, _ any, onCleanup internal.OnCleanup) {
		cb(store, onCleanup)
	}, opts)
}

// WatchEffect runs fn now and again during the next Flush after anything it read changes.
func WatchEffect(fn func(onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	return doWatch(internal.EffectSource(fn), nil, opts)
}

// WatchPostEffect is WatchEffect with re-runs after instance updates.
func WatchPostEffect(fn func(onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	return WatchEffect(fn, append(opts, WithFlush(FlushPost))...)
}

// WatchSyncEffect is WatchEffect with re-runs as soon as something it read changes.
func WatchSyncEffect(fn func(onCleanup OnCleanup), opts ...WatchOption) *WatchHandle {
	return WatchEffect(fn, append(opts, WithFlush(FlushSync))...)
}
