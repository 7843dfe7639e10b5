package fs

import (
	fusefs "bazil.org/fuse/fs"
)

// The kernel requests each node type answers.
var (
	_ fusefs.FS = (*BridgeFS)(nil)

	_ fusefs.Node               = (*Dir)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)

	_ fusefs.Node       = (*File)(nil)
	_ fusefs.NodeOpener = (*File)(nil)

	_ fusefs.Handle         = (*FileHandle)(nil)
	_ fusefs.HandleReader   = (*FileHandle)(nil)
	_ fusefs.HandleReleaser = (*FileHandle)(nil)
)
