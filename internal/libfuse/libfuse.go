// Package libfuse runs a trampoline operations table under the native
// libfuse3 event loop.
//
// The table reaches the C callbacks as a runtime/cgo.Handle stored in the
// fuse private_data pointer. The filesystem instance itself is found through
// the registry by the trampolines.
package libfuse

import (
	"errors"

	"fusebridge/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("libfuse")

	// ErrUnsupported is returned by Main when the binary was built without
	// cgo or for a platform other than linux.
	ErrUnsupported = errors.New("libfuse driver not available in this build")
)
