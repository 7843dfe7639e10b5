package trampoline

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Valid reports whether p is non-nil and a multiple of align.
//
// Whether p points to live memory of the right size can not be checked; that
// is part of the contract with the native library.
func Valid(p unsafe.Pointer, align uintptr) bool {
	return p != nil && uintptr(p)%align == 0
}

// validFor checks p as a pointer to T.
func validFor[T any](p unsafe.Pointer) bool {
	var zero T
	return Valid(p, unsafe.Alignof(zero))
}

// bail logs why op fails and returns the negated errno.
func bail(op string, errno syscall.Errno, format string, args ...any) int32 {
	logger.Warn("%s: %s. (Returning %s - %s)", op, fmt.Sprintf(format, args...), errno.Error(), unix.ErrnoName(errno))
	return -int32(errno)
}

// fail maps an error from the panic boundary to the negated errno. Errors
// returned by user code are routine (ENOENT on lookups) and only logged at
// debug level.
func fail(op string, err error) int32 {
	errno := errnoOf(err)
	switch err.(type) {
	case *PanicError:
		// already logged with its stack
	case *UserError:
		logger.Debug("%s: %v (Returning %s)", op, err, unix.ErrnoName(errno))
	default:
		logger.Warn("%s: %v (Returning %s)", op, err, unix.ErrnoName(errno))
	}
	return -int32(errno)
}
