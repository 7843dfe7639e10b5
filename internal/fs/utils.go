package fs

import (
	"os"

	"fusebridge/filesystem"

	"golang.org/x/sys/unix"
)

func safeInt64ToUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func fileModeOf(st *unix.Stat_t) os.FileMode {
	return filesystem.StatusFromStat(st).Mode().FileMode()
}
