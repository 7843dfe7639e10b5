package filesystem

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// OutOfRangeError is returned when a value falls outside [Min, Max].
type OutOfRangeError struct {
	Value int64
	Min   int64
	Max   int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("argument out of range: '%d'. Must be between '%d' and '%d'", e.Value, e.Min, e.Max)
}

// UninitializedFieldError is returned by ModeBuilder.Build and NewFileStatus
// when a required field was never set.
type UninitializedFieldError struct {
	Field string
}

func (e *UninitializedFieldError) Error() string {
	return fmt.Sprintf("`%s` must be initialized", e.Field)
}

// UnknownFileTypeError is returned when a mode is composed from a value that
// is not one of FileTypes.
type UnknownFileTypeError struct {
	Type FileType
}

func (e *UnknownFileTypeError) Error() string {
	return fmt.Sprintf("unknown file type %#o", uint32(e.Type))
}

// ToErrno resolves an error returned by a Filesystem implementation to the
// errno reported to the kernel. nil maps to 0.
func ToErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == 0 {
			// a failure must never be reported as success
			return syscall.EIO
		}
		return errno
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	case errors.Is(err, os.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, os.ErrInvalid):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
