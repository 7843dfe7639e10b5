// Package filesystem defines what a user filesystem implements to be served
// through the FUSE bridge, together with the value types it exchanges with
// the bridge.
//
// Methods return a syscall.Errno (or an error ToErrno can resolve) on
// failure. The bridge calls them one at a time; an implementation is never
// dropped before the process exits.
package filesystem

// AttributeResult is returned by GetAttributes.
type AttributeResult struct {
	Status FileStatus
}

// DirectoryResult is returned by ListDirectory. Entries are bare names, not
// paths; "." and ".." are not added by the bridge.
type DirectoryResult struct {
	Entries []string
}

// OpenResult is returned by Open. The fields are copied into the native
// per-open record.
type OpenResult struct {
	DirectIO  bool
	KeepCache bool
	Handle    uint64
}

// ReadResult is returned by Read. Content must not be longer than the
// requested size; the bridge fails the read rather than truncating it.
type ReadResult struct {
	Content []byte
}

// Filesystem is the high-level surface a user filesystem implements. Paths
// are absolute, valid UTF-8 and owned by the callee.
type Filesystem interface {
	GetAttributes(path string) (AttributeResult, error)
	ListDirectory(path string) (DirectoryResult, error)
	Open(path string, flags OpenFlags) (OpenResult, error)
	Read(path string, maxBytes uint32, offset int64) (ReadResult, error)
}
