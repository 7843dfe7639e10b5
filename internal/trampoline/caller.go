package trampoline

import (
	"sync"
	"syscall"
	"unsafe"

	"fusebridge/internal/cstr"

	"golang.org/x/sys/unix"
)

// Caller drives an Operations table from Go memory, the way the native
// library would: it encodes paths, owns the status record and the read
// buffer, and turns return codes back into errnos.
//
// Calls are serialized, so a driver that serves requests concurrently still
// invokes the trampolines one at a time.
type Caller struct {
	ops *Operations
	mu  sync.Mutex
}

// NewCaller creates a Caller for ops.
func NewCaller(ops *Operations) *Caller {
	return &Caller{ops: ops}
}

// Operations returns the table c dispatches to.
func (c *Caller) Operations() *Operations {
	return c.ops
}

func toErrno(rc int32) syscall.Errno {
	if rc >= 0 {
		return 0
	}
	return syscall.Errno(-rc)
}

// Stat returns the status record for path.
func (c *Caller) Stat(path string) (unix.Stat_t, syscall.Errno) {
	var st unix.Stat_t
	if c.ops.Getattr == nil {
		return st, syscall.ENOSYS
	}
	p, err := cstr.Encode(path)
	if err != nil {
		return st, syscall.EINVAL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if errno := toErrno(c.ops.Getattr(cstr.Pointer(p), unsafe.Pointer(&st))); errno != 0 {
		return unix.Stat_t{}, errno
	}
	return st, 0
}

// List returns the entry names of the directory at path.
func (c *Caller) List(path string) ([]string, syscall.Errno) {
	if c.ops.Readdir == nil {
		return nil, syscall.ENOSYS
	}
	p, err := cstr.Encode(path)
	if err != nil {
		return nil, syscall.EINVAL
	}

	var names []string
	fill := func(name, _ unsafe.Pointer, _ int64, _ FillFlags) int32 {
		decoded, err := cstr.Decode(name)
		if err != nil {
			return 1
		}
		names = append(names, decoded)
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var info FileInfo
	if errno := toErrno(c.ops.Readdir(cstr.Pointer(p), fill, 0, unsafe.Pointer(&info))); errno != 0 {
		return nil, errno
	}
	return names, 0
}

// Open issues an open request for path with the given open(2) flags and
// returns the per-open record filled in by the filesystem.
func (c *Caller) Open(path string, flags int32) (FileInfo, syscall.Errno) {
	info := FileInfo{Flags: flags}
	if c.ops.Open == nil {
		return info, syscall.ENOSYS
	}
	p, err := cstr.Encode(path)
	if err != nil {
		return info, syscall.EINVAL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if errno := toErrno(c.ops.Open(cstr.Pointer(p), unsafe.Pointer(&info))); errno != 0 {
		return FileInfo{Flags: flags}, errno
	}
	return info, 0
}

// Read reads into dest from offset and returns the number of bytes read.
func (c *Caller) Read(path string, dest []byte, offset int64, info FileInfo) (int, syscall.Errno) {
	if c.ops.Read == nil {
		return 0, syscall.ENOSYS
	}
	p, err := cstr.Encode(path)
	if err != nil {
		return 0, syscall.EINVAL
	}

	buf := unsafe.Pointer(unsafe.SliceData(dest))
	if len(dest) == 0 {
		var scratch byte
		buf = unsafe.Pointer(&scratch)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rc := c.ops.Read(cstr.Pointer(p), buf, uint64(len(dest)), offset, unsafe.Pointer(&info))
	if errno := toErrno(rc); errno != 0 {
		return 0, errno
	}
	return int(rc), 0
}
