package trampoline

import (
	"errors"
	"fmt"
	"runtime/debug"
	"syscall"

	"fusebridge/filesystem"
	"fusebridge/internal/state"

	"golang.org/x/sys/unix"
)

// UserError wraps an error returned by a Filesystem method.
type UserError struct {
	Op  string
	FS  string
	Err error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("error in user code `%s::%s`: %v", e.FS, e.Op, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// Errno is the code reported to the kernel for this error.
func (e *UserError) Errno() syscall.Errno { return filesystem.ToErrno(e.Err) }

// PanicError is returned when a Filesystem method panicked. The registry has
// been cleared by the time it is returned.
type PanicError struct {
	Op    string
	FS    string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("PANIC on `%s::%s`: %v", e.FS, e.Op, e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func (e *PanicError) Errno() syscall.Errno { return unix.ENOTRECOVERABLE }

// CallIntoUserCode runs fn, one call into the FS implementation named by op.
// Every call into user code goes through here.
//
// An error returned by fn comes back wrapped in a *UserError. A panic in fn
// is recovered, the registry is cleared so no further call can reach the
// possibly inconsistent filesystem, and a *PanicError is returned.
func CallIntoUserCode[FS any, T any](op string, fn func() (T, error)) (result T, err error) {
	fsName := state.TypeName[FS]()

	defer func() {
		if p := recover(); p != nil {
			state.Clear()

			var zero T
			result = zero
			err = &PanicError{
				Op:    op,
				FS:    fsName,
				Value: p,
				Stack: debug.Stack(),
			}
			logger.Error("%v\n\n%s", err, err.(*PanicError).Stack)
		}
	}()

	result, err = fn()
	if err != nil {
		var zero T
		return zero, &UserError{Op: op, FS: fsName, Err: err}
	}
	return result, nil
}

// errnoOf resolves any error produced in this package to the errno returned
// to the native caller.
func errnoOf(err error) syscall.Errno {
	var coded interface{ Errno() syscall.Errno }
	if errors.As(err, &coded) {
		return coded.Errno()
	}
	return filesystem.ToErrno(err)
}
