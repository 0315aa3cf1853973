package internal

import (
	"math"
	"reflect"
	"unsafe"
)

// DepthInfinite traverses every nested level.
const DepthInfinite = math.MaxInt

// Node is implemented by typed wrappers so traversal can reach the runtime node behind them.
type Node interface {
	ReactiveNode() any
}

// Traverse reads nested reactive structure up to depth levels so that the active
// subscriber depends on all of it. Cycles are visited once.
func Traverse(value any, depth int) any {
	return traverse(value, depth, make(map[any]struct{}))
}

func traverse(value any, depth int, seen map[any]struct{}) any {
	if depth <= 0 || value == nil {
		return value
	}

	switch v := value.(type) {
	case Node:
		traverse(v.ReactiveNode(), depth, seen)
	case *Signal:
		if visit(seen, v) {
			traverse(v.Read(), depth-1, seen)
		}
	case *Computed:
		if visit(seen, v) {
			traverse(v.Read(), depth-1, seen)
		}
	case *Store:
		if visit(seen, v) {
			for _, key := range v.Keys() {
				nested, _ := v.Get(key)
				traverse(nested, depth-1, seen)
			}
		}
	default:
		traverseValue(reflect.ValueOf(value), depth, seen)
	}

	return value
}

// sliceKey identifies a slice header, two slices over the same backing array
// with different lengths are different values.
type sliceKey struct {
	data unsafe.Pointer
	len  int
}

// traverseValue walks plain collections looking for nested reactive nodes.
// Maps and slices are recorded in seen so self-referencing collections terminate.
func traverseValue(rv reflect.Value, depth int, seen map[any]struct{}) {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Len() == 0 || !visit(seen, sliceKey{rv.UnsafePointer(), rv.Len()}) {
			return
		}
		for i := range rv.Len() {
			traverse(rv.Index(i).Interface(), depth-1, seen)
		}
	case reflect.Array:
		for i := range rv.Len() {
			traverse(rv.Index(i).Interface(), depth-1, seen)
		}
	case reflect.Map:
		if rv.IsNil() || !visit(seen, rv.UnsafePointer()) {
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			traverse(iter.Value().Interface(), depth-1, seen)
		}
	}
}

func visit(seen map[any]struct{}, node any) bool {
	if _, ok := seen[node]; ok {
		return false
	}

	seen[node] = struct{}{}
	return true
}
