package internal

import (
	"errors"
	"fmt"
)

// ErrorCode attributes a reaction failure to the call site that raised it.
type ErrorCode int

const (
	ErrorWatchGetter ErrorCode = iota
	ErrorWatchCallback
	ErrorWatchCleanup
	ErrorScheduler
	ErrorInstanceUpdate
	ErrorAppHandler
	ErrorNextTick
)

var errorCodeNames = map[ErrorCode]string{
	ErrorWatchGetter:    "watcher getter",
	ErrorWatchCallback:  "watcher callback",
	ErrorWatchCleanup:   "watcher cleanup function",
	ErrorScheduler:      "scheduler flush",
	ErrorInstanceUpdate: "instance update",
	ErrorAppHandler:     "error handler",
	ErrorNextTick:       "next tick callback",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

var ErrRecursiveUpdates = errors.New("maximum recursive updates exceeded")

// ReactionError wraps a failure raised by user code run by the runtime.
type ReactionError struct {
	Code     ErrorCode
	Instance *Instance

	// the recovered panic value or reported error
	Cause any
}

func (e *ReactionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Cause)
}

func (e *ReactionError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler isolates failures of user code and routes them to a single place:
// instance hooks from nearest to root, then the runtime handler, then the log.
type ErrorHandler struct {
	rt *Runtime
}

func NewErrorHandler(r *Runtime) *ErrorHandler {
	return &ErrorHandler{rt: r}
}

// Call runs fn, recovering any panic and routing it with Handle.
// It reports whether fn completed.
func (h *ErrorHandler) Call(fn func(), instance *Instance, code ErrorCode) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			h.Handle(r, instance, code)
		}
	}()

	fn()
	return true
}

func (h *ErrorHandler) Handle(cause any, instance *Instance, code ErrorCode) {
	err := &ReactionError{Code: code, Instance: instance, Cause: cause}
	h.rt.metrics.recordError(code)

	for cur := instance; cur != nil; cur = cur.parent {
		for _, hook := range cur.errorHooks {
			if !h.capture(hook, err) {
				return
			}
		}
	}

	if handler := h.rt.config.ErrorHandler; handler != nil {
		h.deliver(handler, err)
		return
	}

	h.log("unhandled reaction error", err)
}

// capture calls an instance hook, a failing hook does not stop propagation.
func (h *ErrorHandler) capture(hook func(error) bool, err *ReactionError) (propagate bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log("error hook failed", &ReactionError{Code: ErrorAppHandler, Instance: err.Instance, Cause: r})
			propagate = true
		}
	}()

	return hook(err)
}

func (h *ErrorHandler) deliver(handler func(*ReactionError), err *ReactionError) {
	defer func() {
		if r := recover(); r != nil {
			h.log("error handler failed", &ReactionError{Code: ErrorAppHandler, Instance: err.Instance, Cause: r})
			h.log("unhandled reaction error", err)
		}
	}()

	handler(err)
}

func (h *ErrorHandler) log(msg string, err *ReactionError) {
	attrs := []any{"code", err.Code.String(), "error", err.Error()}
	if inst := err.Instance; inst != nil {
		attrs = append(attrs, "instance", inst.Name, "instance_uid", inst.UID, "instance_id", inst.ID.String())
	}

	h.rt.logger.Error(msg, attrs...)
}
