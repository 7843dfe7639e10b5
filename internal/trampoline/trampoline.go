// Package trampoline adapts the native FUSE callback convention to the
// filesystem.Filesystem interface.
//
// Each trampoline validates the raw pointers it receives, decodes the path,
// looks the filesystem up in the registry, calls it through CallIntoUserCode
// and writes the result into caller-owned memory. It returns 0 (or a byte
// count for Read) on success and a negated errno on failure, and writes no
// output on the failure path.
package trampoline

import (
	"math"
	"unsafe"

	"fusebridge/filesystem"
	"fusebridge/internal/cstr"
	"fusebridge/internal/logging"
	"fusebridge/internal/state"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

var (
	logger = logging.GetLogger().WithPrefix("trampoline")
)

// Operation names, used for logging and error reporting.
const (
	OpGetattr = "getattr"
	OpReaddir = "readdir"
	OpOpen    = "open"
	OpRead    = "read"
)

// FileInfo is the part of the native per-open record the bridge reads and
// writes. Native drivers copy it in and out of their own record.
type FileInfo struct {
	Flags     int32
	DirectIO  bool
	KeepCache bool
	Handle    uint64
}

// FillFlags are passed through to the native directory filler.
type FillFlags int32

// FillDirDefaults leaves the status argument unset, so the kernel does not
// populate its inode cache from the listing.
const FillDirDefaults FillFlags = 0

// FillFunc adds one directory entry. name points to a NUL-terminated
// sequence that is only valid for the duration of the call. A non-zero
// return means the entry was not accepted.
type FillFunc func(name, stat unsafe.Pointer, offset int64, flags FillFlags) int32

func lookup[FS filesystem.Filesystem]() (FS, error) {
	return state.Get[FS]()
}

// Getattr fills the unix.Stat_t at statOut with the attributes of the path
// at path.
func Getattr[FS filesystem.Filesystem](path, statOut unsafe.Pointer) int32 {
	if !validFor[byte](path) {
		return bail(OpGetattr, unix.EINVAL, "`path` must be non-null and aligned")
	}
	if !validFor[unix.Stat_t](statOut) {
		return bail(OpGetattr, unix.EINVAL, "`stat_out` must be non-null and aligned")
	}

	p, err := cstr.Decode(path)
	if err != nil {
		return bail(OpGetattr, unix.EINVAL, "%v", err)
	}

	fs, err := lookup[FS]()
	if err != nil {
		return bail(OpGetattr, unix.ENOTRECOVERABLE, "%v", err)
	}

	logger.Debug("enter: getattr(%q)", p)
	result, err := CallIntoUserCode[FS](OpGetattr, func() (filesystem.AttributeResult, error) {
		return fs.GetAttributes(p)
	})
	if err != nil {
		return fail(OpGetattr, err)
	}

	result.Status.Fill((*unix.Stat_t)(statOut))
	logger.Debug("return: getattr(%q) => %s, nlink=%d, size=%d",
		p, result.Status.Mode(), result.Status.Links(), result.Status.Size())
	return 0
}

// Readdir passes every entry of the directory at path to fill. The listing
// is always complete, so offset is ignored and every entry is filled with
// offset 0.
func Readdir[FS filesystem.Filesystem](path unsafe.Pointer, fill FillFunc, offset int64, fi unsafe.Pointer) int32 {
	if fill == nil {
		return bail(OpReaddir, unix.EINVAL, "`filler` must not be null")
	}
	if !validFor[byte](path) {
		return bail(OpReaddir, unix.EINVAL, "`path` must be non-null and aligned")
	}
	if !validFor[FileInfo](fi) {
		return bail(OpReaddir, unix.EINVAL, "`fuse_file_info` must be non-null and aligned")
	}

	p, err := cstr.Decode(path)
	if err != nil {
		return bail(OpReaddir, unix.EINVAL, "%v", err)
	}

	fs, err := lookup[FS]()
	if err != nil {
		return bail(OpReaddir, unix.ENOTRECOVERABLE, "%v", err)
	}

	logger.Debug("enter: readdir(%q, offset=%d)", p, offset)
	result, err := CallIntoUserCode[FS](OpReaddir, func() (filesystem.DirectoryResult, error) {
		return fs.ListDirectory(p)
	})
	if err != nil {
		return fail(OpReaddir, err)
	}
	logger.Debug("return: readdir(%q) => %q", p, result.Entries)

	for _, entry := range result.Entries {
		name, err := cstr.Encode(entry)
		if err != nil {
			return bail(OpReaddir, unix.EIO, "converting dir entry into a C string: %v", err)
		}

		logger.Trace("filling entry %q of %q", entry, p)
		if rc := fill(cstr.Pointer(name), nil, 0, FillDirDefaults); rc != 0 {
			return bail(OpReaddir, unix.EIO, "filler returned non-zero for %q: %d", entry, rc)
		}
	}
	return 0
}

// Open checks the access mode of an open request and hands it to the
// filesystem. Only read-only opens are supported.
func Open[FS filesystem.Filesystem](path, fi unsafe.Pointer) int32 {
	if !validFor[byte](path) {
		return bail(OpOpen, unix.EINVAL, "`path` must be non-null and aligned")
	}
	if !validFor[FileInfo](fi) {
		return bail(OpOpen, unix.EINVAL, "`fuse_file_info` must be non-null and aligned")
	}

	info := (*FileInfo)(fi)
	flags := filesystem.NewOpenFlags(info.Flags)
	if !flags.ReadOnly() {
		return bail(OpOpen, unix.EACCES, "only read-only access is supported, got %s", flags)
	}

	p, err := cstr.Decode(path)
	if err != nil {
		return bail(OpOpen, unix.EINVAL, "%v", err)
	}

	fs, err := lookup[FS]()
	if err != nil {
		return bail(OpOpen, unix.ENOTRECOVERABLE, "%v", err)
	}

	logger.Debug("enter: open(%q, %s)", p, flags)
	result, err := CallIntoUserCode[FS](OpOpen, func() (filesystem.OpenResult, error) {
		return fs.Open(p, flags)
	})
	if err != nil {
		return fail(OpOpen, err)
	}

	info.DirectIO = result.DirectIO
	info.KeepCache = result.KeepCache
	info.Handle = result.Handle
	logger.Debug("return: open(%q) => direct_io=%t keep_cache=%t fh=%d",
		p, result.DirectIO, result.KeepCache, result.Handle)
	return 0
}

// Read copies up to size bytes of the file at path, starting at offset, into
// buf and returns the number of bytes copied. Content longer than size is an
// error, never truncated.
func Read[FS filesystem.Filesystem](path, buf unsafe.Pointer, size uint64, offset int64, fi unsafe.Pointer) int32 {
	if !validFor[byte](path) {
		return bail(OpRead, unix.EINVAL, "`path` must be non-null and aligned")
	}
	if !validFor[byte](buf) {
		return bail(OpRead, unix.EINVAL, "`buf` must be non-null and aligned")
	}
	if !validFor[FileInfo](fi) {
		return bail(OpRead, unix.EINVAL, "`fuse_file_info` must be non-null and aligned")
	}

	if size == 0 {
		// no room in the buffer, nothing to do
		return 0
	}
	if size > math.MaxInt32 {
		return bail(OpRead, unix.EDOM, "size %d does not fit the return value", size)
	}
	if offset < 0 {
		return bail(OpRead, unix.EINVAL, "negative offset %d", offset)
	}

	p, err := cstr.Decode(path)
	if err != nil {
		return bail(OpRead, unix.EINVAL, "%v", err)
	}

	fs, err := lookup[FS]()
	if err != nil {
		return bail(OpRead, unix.ENOTRECOVERABLE, "%v", err)
	}

	logger.Debug("enter: read(%q, buf=%#x, size=%d, offset=%#x)", p, uintptr(buf), size, offset)
	result, err := CallIntoUserCode[FS](OpRead, func() (filesystem.ReadResult, error) {
		return fs.Read(p, uint32(size), offset)
	})
	if err != nil {
		return fail(OpRead, err)
	}

	n := len(result.Content)
	if uint64(n) > size {
		return bail(OpRead, unix.ENOSYS, "user code returned %d bytes for a %d byte buffer", n, size)
	}

	copy(unsafe.Slice((*byte)(buf), n), result.Content)
	logger.Debug("return: read(%q) => %s", p, humanize.Bytes(uint64(n)))
	return int32(n)
}
