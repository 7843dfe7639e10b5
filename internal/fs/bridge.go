// Package fs serves a trampoline operations table over the kernel FUSE
// protocol with bazil.org/fuse.
package fs

import (
	"context"
	"fmt"

	"fusebridge/filesystem"
	"fusebridge/internal/config"
	"fusebridge/internal/logging"
	"fusebridge/internal/trampoline"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"golang.org/x/sys/unix"
)

var (
	bridgeLogger = logging.GetLogger().WithPrefix("bazil")
)

// BridgeFS is the root of a mounted bridge. Every node answers kernel
// requests by driving the trampolines through a shared Caller.
type BridgeFS struct {
	caller *trampoline.Caller
	uid    uint32 // owner reported for every node
	gid    uint32
}

// NewBridgeFS creates a filesystem that dispatches to caller.
func NewBridgeFS(caller *trampoline.Caller) *BridgeFS {
	uid, gid := config.Owner()
	return &BridgeFS{
		caller: caller,
		uid:    uid,
		gid:    gid,
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (b *BridgeFS) Root() (fusefs.Node, error) {
	bridgeLogger.Trace("Getting root directory node")
	return &Dir{
		fs:   b,
		path: NewVirtualPath("/"),
	}, nil
}

// stat queries the filesystem for path.
func (b *BridgeFS) stat(op string, path *VirtualPath) (*unix.Stat_t, error) {
	st, errno := b.caller.Stat(path.String())
	if errno != 0 {
		return nil, NewFSError(op, path.String(), errno)
	}
	return &st, nil
}

// node builds the kernel node for path from its status record.
func (b *BridgeFS) node(path *VirtualPath, st *unix.Stat_t) fusefs.Node {
	if fileModeOf(st).IsDir() {
		return &Dir{fs: b, path: path}
	}
	return &File{fs: b, path: path}
}

// fillAttr copies st into a.
func (b *BridgeFS) fillAttr(a *fuse.Attr, st *unix.Stat_t) {
	status := filesystem.StatusFromStat(st)
	size := safeInt64ToUint64(status.Size())
	a.Mode = status.Mode().FileMode()
	a.Nlink = uint32(status.Links())
	a.Size = size
	a.Uid = b.uid
	a.Gid = b.gid
	a.BlockSize = 4096
	a.Blocks = (size + 511) / 512
}

func mountOptions(opts config.MountOptions) []fuse.MountOption {
	fsName := opts.FSName
	if fsName == "" {
		fsName = "fusebridge"
	}
	mountOpts := []fuse.MountOption{
		fuse.FSName(fsName),
	}
	if opts.Subtype != "" {
		mountOpts = append(mountOpts, fuse.Subtype(opts.Subtype))
	}
	if opts.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}
	if opts.DefaultPermissions {
		mountOpts = append(mountOpts, fuse.DefaultPermissions())
	}
	if opts.ReadOnly {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}
	return mountOpts
}

// Serve mounts b at mountPoint and answers requests until the filesystem is
// unmounted from outside or ctx is cancelled, in which case Serve unmounts
// it.
func (b *BridgeFS) Serve(ctx context.Context, mountPoint string, opts config.MountOptions) error {
	bridgeLogger.Info("Mounting filesystem")
	bridgeLogger.Debug("Mount point: %s", mountPoint)
	bridgeLogger.Debug("UID: %d, GID: %d", b.uid, b.gid)
	if len(opts.Ignored) > 0 {
		bridgeLogger.Debug("Ignoring mount options: %v", opts.Ignored)
	}

	c, err := fuse.Mount(mountPoint, mountOptions(opts)...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer c.Close()

	var cfg *fusefs.Config
	if opts.Debug {
		cfg = &fusefs.Config{
			Debug: func(msg interface{}) {
				bridgeLogger.Trace("%v", msg)
			},
		}
	}
	server := fusefs.New(c, cfg)

	done := make(chan error, 1)
	go func() {
		bridgeLogger.Info("Serving filesystem...")
		done <- server.Serve(b)
	}()

	select {
	case err := <-done:
		bridgeLogger.Debug("FUSE server stopped")
		return err
	case <-ctx.Done():
	}

	bridgeLogger.Info("Unmounting filesystem from: %s", mountPoint)
	if err := fuse.Unmount(mountPoint); err != nil {
		bridgeLogger.Error("Unmount failed: %v", err)
		return err
	}
	err = <-done
	bridgeLogger.Info("Unmount completed successfully")
	return err
}
