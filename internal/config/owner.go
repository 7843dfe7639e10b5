package config

import (
	"os"
	"strconv"

	"fusebridge/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("config")
)

// Owner returns the uid and gid reported for every node of a mount. They
// default to the current process and can be overridden with PUID and PGID.
// Values that do not parse as a 32 bit id are ignored.
func Owner() (uid, gid uint32) {
	uid = idOf(os.Getuid())
	gid = idOf(os.Getgid())

	if v, ok := parseID("PUID"); ok {
		uid = v
		logger.Debug("Using PUID from environment: %d", uid)
	}
	if v, ok := parseID("PGID"); ok {
		gid = v
		logger.Debug("Using PGID from environment: %d", gid)
	}
	return uid, gid
}

func parseID(key string) (uint32, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logger.Warn("Ignoring invalid %s %q: %v", key, raw, err)
		return 0, false
	}
	return uint32(id), true
}

func idOf(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}
