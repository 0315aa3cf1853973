package internal

import (
	"maps"
	"slices"
)

// Store is a reactive string-keyed object. Reads of a key track that key,
// reads of the key set (Keys, Len) track additions and deletions.
type Store struct {
	rt *Runtime

	values map[string]any
	deps   map[string]*Dep
	keys   *Dep
}

func (r *Runtime) NewStore(initial map[string]any) *Store {
	s := &Store{
		rt:     r,
		values: make(map[string]any, len(initial)),
		deps:   make(map[string]*Dep),
		keys:   newDep(),
	}
	maps.Copy(s.values, initial)

	return s
}

func (s *Store) dep(key string) *Dep {
	d, ok := s.deps[key]
	if !ok {
		d = newDep()
		s.deps[key] = d
	}

	return d
}

func (s *Store) Get(key string) (any, bool) {
	s.dep(key).track(s.rt)

	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Store) Set(key string, v any) {
	old, existed := s.values[key]
	if existed && !hasChanged(old, v) {
		return
	}
	s.values[key] = v

	s.rt.batcher.start()
	defer s.rt.batcher.end()

	s.dep(key).trigger(s.rt)
	if !existed {
		s.keys.trigger(s.rt)
	}
}

func (s *Store) Delete(key string) bool {
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)

	s.rt.batcher.start()
	defer s.rt.batcher.end()

	s.dep(key).trigger(s.rt)
	s.keys.trigger(s.rt)

	return true
}

// Keys returns the sorted keys, tracking additions and deletions.
func (s *Store) Keys() []string {
	s.keys.track(s.rt)
	return slices.Sorted(maps.Keys(s.values))
}

func (s *Store) Len() int {
	s.keys.track(s.rt)
	return len(s.values)
}
