// Package cstr converts between NUL-terminated byte sequences owned by native
// code and owned Go strings.
package cstr

import (
	"fmt"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/sys/unix"
)

// InvalidEncodingError reports a byte sequence that is not valid UTF-8.
type InvalidEncodingError struct {
	// Offset of the first byte that does not start a valid rune.
	Offset int
	Bytes  []byte
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("path is not valid UTF-8: invalid byte %#02x at offset %d", e.Bytes[e.Offset], e.Offset)
}

// Decode copies the NUL-terminated sequence at p into a Go string and
// checks that it is valid UTF-8. Nothing returned refers to the memory at p.
//
// p must be non-nil and point to a NUL-terminated sequence; the caller
// checks the former.
func Decode(p unsafe.Pointer) (string, error) {
	s := unix.BytePtrToString((*byte)(p))
	if offset, ok := firstInvalid(s); !ok {
		return "", &InvalidEncodingError{Offset: offset, Bytes: []byte(s)}
	}
	return s, nil
}

func firstInvalid(s string) (int, bool) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i, false
		}
		i += size
	}
	return 0, true
}

// Encode returns a NUL-terminated copy of s. It fails if s contains a NUL.
func Encode(s string) ([]byte, error) {
	b, err := unix.ByteSliceFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%q contains a NUL byte: %w", s, err)
	}
	return b, nil
}

// Pointer returns the address of the first byte of an encoded string.
func Pointer(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// Argv encodes an argument vector. The error names the failing argument.
func Argv(args []string) ([][]byte, error) {
	argv := make([][]byte, 0, len(args))
	for i, arg := range args {
		b, err := Encode(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		argv = append(argv, b)
	}
	return argv, nil
}
