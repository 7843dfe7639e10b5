package fs

import (
	"context"

	"fusebridge/internal/logging"
	"fusebridge/internal/trampoline"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/dustin/go-humanize"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents a non-directory node of the served filesystem.
type File struct {
	fs   *BridgeFS
	path *VirtualPath
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	fileLogger.Trace("Getting attributes for file: %q", f.path.String())

	st, err := f.fs.stat(OpGetattr, f.path)
	if err != nil {
		return err
	}
	f.fs.fillAttr(a, st)

	fileLogger.Trace("File attributes: mode=%v, size=%d", a.Mode, a.Size)
	return nil
}

// Open implements the NodeOpener interface. Access checks are left to the
// open trampoline, which refuses anything but read-only access.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	fileLogger.Debug("Opening file %q with flags %v", f.path.String(), req.Flags)

	info, errno := f.fs.caller.Open(f.path.String(), int32(req.Flags))
	if errno != 0 {
		return nil, NewFSError(OpOpen, f.path.String(), errno)
	}

	if info.DirectIO {
		resp.Flags |= fuse.OpenDirectIO
	}
	if info.KeepCache {
		resp.Flags |= fuse.OpenKeepCache
	}

	fileLogger.Debug("Successfully opened file %q", f.path.String())
	return &FileHandle{
		fs:   f.fs,
		path: f.path,
		info: info,
	}, nil
}

// FileHandle represents an open file. It keeps the per-open record the open
// trampoline filled in and passes it back on every read.
type FileHandle struct {
	fs   *BridgeFS
	path *VirtualPath
	info trampoline.FileInfo
}

// Read implements the HandleReader interface, reading data from the file.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fileLogger.Trace("Reading %d bytes from file %q at offset %d",
		req.Size, fh.path.String(), req.Offset)

	resp.Data = make([]byte, req.Size)
	n, errno := fh.fs.caller.Read(fh.path.String(), resp.Data, req.Offset, fh.info)
	if errno != 0 {
		resp.Data = nil
		return NewFSError(OpRead, fh.path.String(), errno)
	}

	resp.Data = resp.Data[:n]
	fileLogger.Trace("Successfully read %s", humanize.Bytes(uint64(n)))
	return nil
}

// Release implements the HandleReleaser interface.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fileLogger.Debug("Closing file %q (fh=%d)", fh.path.String(), fh.info.Handle)
	return nil
}
