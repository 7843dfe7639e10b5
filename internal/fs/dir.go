package fs

import (
	"context"

	"fusebridge/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory of the served filesystem. Its attributes and
// children are fetched from the filesystem on every request.
type Dir struct {
	fs   *BridgeFS
	path *VirtualPath
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path.String())

	st, err := d.fs.stat(OpGetattr, d.path)
	if err != nil {
		return err
	}
	d.fs.fillAttr(a, st)
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	dirLogger.Debug("Looking up %q in directory %q", name, d.path.String())
	childPath := d.path.Join(name)

	st, err := d.fs.stat(OpLookup, childPath)
	if err != nil {
		dirLogger.Debug("Path not found: %q", childPath.String())
		return nil, err
	}

	node := d.fs.node(childPath, st)
	dirLogger.Trace("Found %q (mode %v)", childPath.String(), fileModeOf(st))
	return node, nil
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path.String())

	names, errno := d.fs.caller.List(d.path.String())
	if errno != 0 {
		return nil, NewFSError(OpReadDir, d.path.String(), errno)
	}

	// Add standard entries
	entries := make([]fuse.Dirent, 0, len(names)+2)
	entries = append(entries, fuse.Dirent{Name: ".", Type: fuse.DT_Dir})
	entries = append(entries, fuse.Dirent{Name: "..", Type: fuse.DT_Dir})

	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		// the type is left unknown; the kernel looks it up when it needs it
		entries = append(entries, fuse.Dirent{Name: name, Type: fuse.DT_Unknown})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}
