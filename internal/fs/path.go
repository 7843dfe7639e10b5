package fs

import (
	"path"
	"strings"

	"fusebridge/internal/logging"
)

var (
	pathLogger = logging.GetLogger().WithPrefix("path")
)

// VirtualPath is the path of a node as the mounted filesystem sees it. It is
// always absolute and clean, the form the trampolines pass to user code.
type VirtualPath struct {
	// always starts with /
	path string
}

// NewVirtualPath creates a new VirtualPath instance.
// It cleans the path and ensures it's absolute.
func NewVirtualPath(p string) *VirtualPath {
	cleaned := path.Clean(p)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = path.Clean("/" + cleaned)
	}
	pathLogger.Trace("Creating new virtual path: %q -> %q", p, cleaned)
	return &VirtualPath{path: cleaned}
}

// String returns the string representation of the path
func (vp *VirtualPath) String() string {
	return vp.path
}

// Join returns the path of the child name of vp.
func (vp *VirtualPath) Join(name string) *VirtualPath {
	if vp.IsRoot() {
		return NewVirtualPath("/" + name)
	}
	return NewVirtualPath(vp.path + "/" + name)
}

// IsRoot returns true if this is the root virtual path "/"
func (vp *VirtualPath) IsRoot() bool {
	return vp.path == "/"
}
