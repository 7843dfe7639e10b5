//go:build linux && cgo

package libfuse

/*
#include "shim.h"
*/
import "C"

import (
	"unsafe"

	"fusebridge/internal/trampoline"
)

// fileInfo copies the fields of the native per-open record the trampolines
// use. A nil fi yields a nil pointer, which the trampolines reject.
func fileInfo(fi *C.struct_fuse_file_info) (*trampoline.FileInfo, unsafe.Pointer) {
	if fi == nil {
		return nil, nil
	}
	info := &trampoline.FileInfo{
		Flags:     int32(C.bridge_open_flags(fi)),
		DirectIO:  C.bridge_direct_io(fi) != 0,
		KeepCache: C.bridge_keep_cache(fi) != 0,
		Handle:    uint64(C.bridge_fh(fi)),
	}
	return info, unsafe.Pointer(info)
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

//export goBridgeGetattr
func goBridgeGetattr(handle C.uintptr_t, path *C.char, st *C.struct_stat) C.int {
	return C.int(protect(trampoline.OpGetattr, func() int32 {
		return operations(uintptr(handle)).Getattr(unsafe.Pointer(path), unsafe.Pointer(st))
	}))
}

//export goBridgeReaddir
func goBridgeReaddir(handle C.uintptr_t, path *C.char, buf unsafe.Pointer, filler C.fuse_fill_dir_t, offset C.off_t, fi *C.struct_fuse_file_info) C.int {
	return C.int(protect(trampoline.OpReaddir, func() int32 {
		var fill trampoline.FillFunc
		if filler != nil {
			fill = func(name, stat unsafe.Pointer, off int64, flags trampoline.FillFlags) int32 {
				return int32(C.bridge_fill(filler, buf, (*C.char)(name), (*C.struct_stat)(stat), C.off_t(off), C.int(flags)))
			}
		}
		_, info := fileInfo(fi)
		return operations(uintptr(handle)).Readdir(unsafe.Pointer(path), fill, int64(offset), info)
	}))
}

//export goBridgeOpen
func goBridgeOpen(handle C.uintptr_t, path *C.char, fi *C.struct_fuse_file_info) C.int {
	return C.int(protect(trampoline.OpOpen, func() int32 {
		info, ptr := fileInfo(fi)
		rc := operations(uintptr(handle)).Open(unsafe.Pointer(path), ptr)
		if rc == 0 {
			C.bridge_set_open_result(fi, cBool(info.DirectIO), cBool(info.KeepCache), C.uint64_t(info.Handle))
		}
		return rc
	}))
}

//export goBridgeRead
func goBridgeRead(handle C.uintptr_t, path *C.char, buf *C.char, size C.size_t, offset C.off_t, fi *C.struct_fuse_file_info) C.int {
	return C.int(protect(trampoline.OpRead, func() int32 {
		_, info := fileInfo(fi)
		return operations(uintptr(handle)).Read(unsafe.Pointer(path), unsafe.Pointer(buf), uint64(size), int64(offset), info)
	}))
}
