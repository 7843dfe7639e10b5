// Package pathfs serves a trampoline operations table with the path-based
// API of github.com/hanwen/go-fuse.
package pathfs

import (
	"context"
	"fmt"
	"time"

	"fusebridge/filesystem"
	"fusebridge/internal/config"
	"fusebridge/internal/logging"
	"fusebridge/internal/trampoline"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"
	"golang.org/x/sys/unix"
)

var (
	logger = logging.GetLogger().WithPrefix("gofuse")
)

// BridgeFS answers path requests by driving the trampolines through a
// Caller. Operations it does not override return ENOSYS.
type BridgeFS struct {
	pathfs.FileSystem
	caller *trampoline.Caller
	uid    uint32
	gid    uint32
}

func NewBridgeFS(caller *trampoline.Caller) *BridgeFS {
	uid, gid := config.Owner()
	return &BridgeFS{
		FileSystem: pathfs.NewDefaultFileSystem(),
		caller:     caller,
		uid:        uid,
		gid:        gid,
	}
}

func (m *BridgeFS) String() string {
	return fmt.Sprintf("fusebridge(%s)", m.caller.Operations().FS)
}

// absolute turns a pathfs name ("" for the root, no leading slash) into the
// absolute path handed to the filesystem.
func absolute(name string) string {
	return "/" + name
}

func (m *BridgeFS) GetAttr(name string, _ *fuse.Context) (*fuse.Attr, fuse.Status) {
	st, errno := m.caller.Stat(absolute(name))
	if errno != 0 {
		return nil, fuse.Status(errno)
	}
	return m.toAttr(&st), fuse.OK
}

func (m *BridgeFS) toAttr(st *unix.Stat_t) *fuse.Attr {
	status := filesystem.StatusFromStat(st)
	size := uint64(0)
	if status.Size() > 0 {
		size = uint64(status.Size())
	}
	return &fuse.Attr{
		Mode:    status.Mode().Raw(),
		Nlink:   uint32(status.Links()),
		Size:    size,
		Blocks:  (size + 511) / 512,
		Blksize: 4096,
		Owner:   fuse.Owner{Uid: m.uid, Gid: m.gid},
	}
}

func (m *BridgeFS) OpenDir(name string, _ *fuse.Context) ([]fuse.DirEntry, fuse.Status) {
	names, errno := m.caller.List(absolute(name))
	if errno != 0 {
		return nil, fuse.Status(errno)
	}

	stream := make([]fuse.DirEntry, len(names))
	for i, entry := range names {
		stream[i] = fuse.DirEntry{Name: entry}
	}
	return stream, fuse.OK
}

func (m *BridgeFS) Open(name string, flags uint32, _ *fuse.Context) (nodefs.File, fuse.Status) {
	path := absolute(name)
	info, errno := m.caller.Open(path, int32(flags))
	if errno != 0 {
		return nil, fuse.Status(errno)
	}

	var fuseFlags uint32
	if info.DirectIO {
		fuseFlags |= fuse.FOPEN_DIRECT_IO
	}
	if info.KeepCache {
		fuseFlags |= fuse.FOPEN_KEEP_CACHE
	}
	return &nodefs.WithFlags{
		File:      wrapFile(m.caller, path, info),
		FuseFlags: fuseFlags,
	}, fuse.OK
}

// BridgeFile is an open file. Reads pass the record filled in by the open
// trampoline back to the filesystem.
type BridgeFile struct {
	nodefs.File
	caller *trampoline.Caller
	path   string
	info   trampoline.FileInfo
}

func wrapFile(caller *trampoline.Caller, path string, info trampoline.FileInfo) *BridgeFile {
	return &BridgeFile{
		File:   nodefs.NewDefaultFile(),
		caller: caller,
		path:   path,
		info:   info,
	}
}

func (m *BridgeFile) String() string {
	return fmt.Sprintf("BridgeFile(%s, fh=%d)", m.path, m.info.Handle)
}

func (m *BridgeFile) Read(dest []byte, off int64) (fuse.ReadResult, fuse.Status) {
	n, errno := m.caller.Read(m.path, dest, off, m.info)
	if errno != 0 {
		return nil, fuse.Status(errno)
	}
	return fuse.ReadResultData(dest[:n]), fuse.OK
}

func mountOptions(opts config.MountOptions) *fuse.MountOptions {
	fsName := opts.FSName
	if fsName == "" {
		fsName = "fusebridge"
	}
	mOpts := &fuse.MountOptions{
		AllowOther: opts.AllowOther,
		FsName:     fsName,
		Name:       opts.Subtype,
		Debug:      opts.Debug,
		// the trampolines are driven one request at a time
		SingleThreaded: true,
	}
	if opts.DefaultPermissions {
		mOpts.Options = append(mOpts.Options, "default_permissions")
	}
	if opts.ReadOnly {
		mOpts.Options = append(mOpts.Options, "ro")
	}
	return mOpts
}

// mountedServer is the part of *fuse.Server used while the mount comes up.
type mountedServer interface {
	WaitMount() error
	Unmount() error
}

// awaitMount blocks until server is mounted. If the mount never becomes
// ready the server is unmounted and the serve loop drained before the
// error is returned.
func awaitMount(server mountedServer, done <-chan struct{}) error {
	err := server.WaitMount()
	if err == nil {
		return nil
	}
	logger.Error("Mount point not ready: %v", err)
	if uerr := server.Unmount(); uerr != nil {
		logger.Debug("Unmount after failed mount: %v", uerr)
	} else {
		<-done
	}
	return fmt.Errorf("mount failed: %w", err)
}

// Serve mounts m at mountPoint and answers requests until the filesystem is
// unmounted from outside or ctx is cancelled, in which case Serve unmounts
// it.
func (m *BridgeFS) Serve(ctx context.Context, mountPoint string, opts config.MountOptions) error {
	logger.Info("Mounting %s", m)
	if len(opts.Ignored) > 0 {
		logger.Debug("Ignoring mount options: %v", opts.Ignored)
	}

	nodeOpts := &nodefs.Options{
		// These options are to be compatible with libfuse defaults.
		NegativeTimeout: time.Second,
		AttrTimeout:     time.Second,
		EntryTimeout:    time.Second,
	}
	pathFs := pathfs.NewPathNodeFs(m, &pathfs.PathNodeFsOptions{})
	conn := nodefs.NewFileSystemConnector(pathFs.Root(), nodeOpts)

	server, err := fuse.NewServer(conn.RawFS(), mountPoint, mountOptions(opts))
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Serve()
	}()
	if err := awaitMount(server, done); err != nil {
		return err
	}
	logger.Info("Filesystem mounted at %s", mountPoint)

	select {
	case <-done:
		logger.Debug("FUSE server stopped")
		return nil
	case <-ctx.Done():
	}

	logger.Info("Unmounting filesystem from: %s", mountPoint)
	if err := server.Unmount(); err != nil {
		logger.Error("Unmount failed: %v", err)
		return err
	}
	<-done
	return nil
}
