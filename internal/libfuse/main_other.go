//go:build !linux || !cgo

package libfuse

import (
	"fusebridge/internal/trampoline"
)

// Available reports whether Main can run a native event loop.
const Available = false

// Main always fails with ErrUnsupported in this build.
func Main(ops *trampoline.Operations, argv [][]byte) error {
	logger.Error("cannot run %s natively: %v", ops.FS, ErrUnsupported)
	return ErrUnsupported
}
