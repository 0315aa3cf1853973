//go:build wasm

package internal

import "sync"

var mu sync.Mutex
var globalRuntime *Runtime

func GetRuntime() *Runtime {
	mu.Lock()
	defer mu.Unlock()

	if globalRuntime == nil {
		globalRuntime = NewRuntime()
	}

	return globalRuntime
}

func SetRuntime(r *Runtime) {
	mu.Lock()
	globalRuntime = r
	mu.Unlock()
}

func ReleaseRuntime() {
	mu.Lock()
	globalRuntime = nil
	mu.Unlock()
}
