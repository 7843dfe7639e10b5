package filesystem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// OpenFlags wraps the native open(2) flag word passed with an open request.
type OpenFlags struct {
	raw int32
}

// NewOpenFlags wraps raw.
func NewOpenFlags(raw int32) OpenFlags {
	return OpenFlags{raw: raw}
}

// Raw returns the native flag word.
func (f OpenFlags) Raw() int32 { return f.raw }

func (f OpenFlags) accessMode() int32 { return f.raw & unix.O_ACCMODE }

// O_RDONLY is zero, so the access-mode predicates compare the masked value
// instead of testing a bit.
func (f OpenFlags) ReadOnly() bool  { return f.accessMode() == unix.O_RDONLY }
func (f OpenFlags) WriteOnly() bool { return f.accessMode() == unix.O_WRONLY }
func (f OpenFlags) ReadWrite() bool { return f.accessMode() == unix.O_RDWR }
func (f OpenFlags) Append() bool    { return f.raw&unix.O_APPEND != 0 }
func (f OpenFlags) Truncate() bool  { return f.raw&unix.O_TRUNC != 0 }

func (f OpenFlags) String() string {
	access := "O_RDONLY"
	switch {
	case f.WriteOnly():
		access = "O_WRONLY"
	case f.ReadWrite():
		access = "O_RDWR"
	case !f.ReadOnly():
		access = fmt.Sprintf("O_ACCMODE(%d)", f.accessMode())
	}
	if f.Append() {
		access += "|O_APPEND"
	}
	if f.Truncate() {
		access += "|O_TRUNC"
	}
	return fmt.Sprintf("%s (%#x)", access, f.raw)
}
