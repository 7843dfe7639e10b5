//go:build linux && cgo

package libfuse

/*
#cgo CFLAGS: -DFUSE_USE_VERSION=31
#cgo pkg-config: fuse3
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"fusebridge/internal/trampoline"
)

// Available reports whether Main can run a native event loop.
const Available = true

// nativeSlots maps each slot to the bit the C shim tests for it.
func nativeSlots() map[trampoline.Slot]uint32 {
	return map[trampoline.Slot]uint32{
		trampoline.SlotGetattr: uint32(C.BRIDGE_SLOT_GETATTR),
		trampoline.SlotReaddir: uint32(C.BRIDGE_SLOT_READDIR),
		trampoline.SlotOpen:    uint32(C.BRIDGE_SLOT_OPEN),
		trampoline.SlotRead:    uint32(C.BRIDGE_SLOT_READ),
	}
}

// Main hands ops to fuse_main with the given argument vector and blocks
// until the filesystem is unmounted. Each argument must already be
// NUL-terminated. Only the slots present in ops are installed.
func Main(ops *trampoline.Operations, argv [][]byte) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty argument vector")
	}

	handle := cgo.NewHandle(ops)
	defer handle.Delete()

	// argv is never freed: libfuse may hold on to it until the process exits
	cArgv := (**C.char)(C.malloc(C.size_t(len(argv)+1) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	vec := unsafe.Slice(cArgv, len(argv)+1)
	for i, arg := range argv {
		vec[i] = (*C.char)(C.CBytes(arg))
	}
	vec[len(argv)] = nil

	logger.Debug("fuse_main(%d args, slots=%04b) for %s", len(argv), ops.Slots(), ops.FS)
	status := C.bridge_main(C.int(len(argv)), cArgv, C.uintptr_t(handle), C.uint32_t(ops.Slots()))
	if status != 0 {
		return fmt.Errorf("fuse_main exited with status %d", int(status))
	}
	return nil
}
