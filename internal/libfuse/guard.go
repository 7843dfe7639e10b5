//go:build linux && cgo

package libfuse

import (
	"fmt"
	"runtime/cgo"
	"runtime/debug"

	"fusebridge/internal/state"
	"fusebridge/internal/trampoline"

	"golang.org/x/sys/unix"
)

// operations resolves the handle stored in the fuse private data.
func operations(handle uintptr) *trampoline.Operations {
	ops, ok := cgo.Handle(handle).Value().(*trampoline.Operations)
	if !ok {
		panic(fmt.Sprintf("private data %#x does not hold an operations table", handle))
	}
	return ops
}

// protect runs one native callback. A panic must never unwind into C, so one
// that escapes the trampoline poisons the registry and becomes
// ENOTRECOVERABLE, the same as a panic in user code.
func protect(op string, fn func() int32) (rc int32) {
	defer func() {
		if p := recover(); p != nil {
			state.Clear()
			logger.Error("PANIC in native callback %s: %v\n\n%s", op, p, debug.Stack())
			rc = -int32(unix.ENOTRECOVERABLE)
		}
	}()
	return fn()
}
