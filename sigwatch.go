package sigwatch

import "github.com/AnatoleLucet/sigwatch/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type Ref[T any] struct {
	signal *internal.Signal
}

// NewRef creates a reactive value. Writes of an equal value are ignored.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		internal.GetRuntime().NewSignal(initial),
	}
}

// NewShallowRef creates a ref whose watchers re-run on every write or Trigger,
// for values mutated in place.
func NewShallowRef[T any](initial T) *Ref[T] {
	return &Ref[T]{
		internal.GetRuntime().NewShallowSignal(initial),
	}
}

// Get the current value of the ref, tracking the dependency if within a reactive context.
func (r *Ref[T]) Get() T {
	return as[T](r.signal.Read())
}

// Peek the current value without tracking.
func (r *Ref[T]) Peek() T {
	return as[T](r.signal.Peek())
}

// Set a new value, triggering updates to any dependents.
func (r *Ref[T]) Set(v T) {
	r.signal.Write(v)
}

func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.Peek()))
}

// Trigger notifies dependents without changing the value.
func (r *Ref[T]) Trigger() {
	r.signal.Trigger()
}

func (r *Ref[T]) ReactiveNode() any {
	return r.signal
}

func (r *Ref[T]) source() internal.Source {
	return internal.SingleSource{Value: r.signal}
}

type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a lazily evaluated value derived from other reactive values (its a memo).
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		internal.GetRuntime().NewComputed(func() any {
			return compute()
		}),
	}
}

// Get the current value of the computed, tracking the dependency if within a reactive context.
func (c *Computed[T]) Get() T {
	return as[T](c.computed.Read())
}

func (c *Computed[T]) Peek() T {
	return as[T](c.computed.Peek())
}

func (c *Computed[T]) ReactiveNode() any {
	return c.computed
}

func (c *Computed[T]) source() internal.Source {
	return internal.SingleSource{Value: c.computed}
}

// Store is a reactive string-keyed object. Watching it with WatchStore
// reacts to changes at any depth.
type Store struct {
	store *internal.Store
}

func NewStore(initial map[string]any) *Store {
	return &Store{
		internal.GetRuntime().NewStore(initial),
	}
}

func (s *Store) Get(key string) (any, bool) {
	return s.store.Get(key)
}

func (s *Store) Has(key string) bool {
	return s.store.Has(key)
}

func (s *Store) Set(key string, v any) {
	s.store.Set(key, v)
}

func (s *Store) Delete(key string) bool {
	return s.store.Delete(key)
}

// Keys returns the sorted keys of the store.
func (s *Store) Keys() []string {
	return s.store.Keys()
}

func (s *Store) Len() int {
	return s.store.Len()
}

func (s *Store) ReactiveNode() any {
	return s.store
}

func (s *Store) source() internal.Source {
	return internal.DeepObject{Store: s.store}
}

// Getter is a watch source computing its value from other reactive values.
type Getter[T any] func() T

func (g Getter[T]) Get() T {
	return g()
}

func (g Getter[T]) source() internal.Source {
	return internal.SingleSource{Getter: func() any { return g() }}
}

// Batch groups multiple writes so dependents are notified once, after fn returns.
func Batch(fn func()) {
	internal.GetRuntime().Batch(fn)
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// Flush runs every queued watcher and instance update: pre jobs and updates by
// instance, then post watchers, then NextTick callbacks.
func Flush() {
	internal.GetRuntime().Flush()
}

// NextTick registers fn to run once the next Flush completes.
func NextTick(fn func()) {
	internal.GetRuntime().NextTick(fn)
}

// Pending reports whether work is waiting for a Flush.
func Pending() bool {
	return internal.GetRuntime().Scheduler().Pending()
}

// Configure replaces the calling goroutine's runtime with a new one built from opts.
// Refs, watchers and instances created before keep using the previous runtime.
func Configure(opts ...Option) {
	internal.SetRuntime(internal.NewRuntime(opts...))
}

// Release forgets the calling goroutine's runtime.
func Release() {
	internal.ReleaseRuntime()
}
