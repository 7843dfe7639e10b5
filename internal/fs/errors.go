package fs

import (
	"fmt"
	"syscall"

	"fusebridge/internal/logging"

	"bazil.org/fuse"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")
)

// Error (renamed from FSError because of linter) carries the errno a
// trampoline returned together with the operation and path that produced it.
type Error struct {
	Op   string        // Operation that failed (e.g., "lookup", "readdir")
	Path string        // Affected path
	Err  syscall.Errno // Code returned by the trampoline
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// Errno implements fuse.ErrorNumber, so the kernel sees the trampoline's code
// unchanged.
func (e *Error) Errno() fuse.Errno {
	return fuse.Errno(e.Err)
}

// NewFSError creates a new Error with the given operation, path, and errno
func NewFSError(op string, path string, errno syscall.Errno) *Error {
	fsErr := &Error{
		Op:   op,
		Path: path,
		Err:  errno,
	}
	errLogger.Debug("Created new FSError: %v", fsErr)
	return fsErr
}

// Common operation names for consistent logging and error reporting
const (
	OpLookup  = "lookup"  // Looking up a path
	OpReadDir = "readdir" // Reading directory contents
	OpOpen    = "open"    // Opening a file
	OpRead    = "read"    // Reading from a file
	OpGetattr = "getattr" // Getting file attributes
)
