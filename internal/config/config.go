// Package config loads the bridge configuration from .env files and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"fusebridge/internal/logging"

	"github.com/joho/godotenv"
)

// Driver names a mount backend.
type Driver string

const (
	DriverLibfuse Driver = "libfuse"
	DriverBazil   Driver = "bazil"
	DriverGoFuse  Driver = "gofuse"
)

// Drivers lists every known driver.
var Drivers = []Driver{DriverLibfuse, DriverBazil, DriverGoFuse}

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	for _, d := range Drivers {
		if strings.EqualFold(name, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown driver %q (want one of %v)", name, Drivers)
}

// DefaultDriver is the native libfuse driver when the binary was built with
// cgo, and the pure-Go bazil driver otherwise.
func DefaultDriver() Driver {
	if nativeAvailable {
		return DriverLibfuse
	}
	return DriverBazil
}

type Config struct {
	LogLevel   logging.LogLevel
	LogFile    string
	LogNoColor bool
	Driver     Driver
	FSName     string
	AllowOther bool
	Debug      bool
}

const defaultFSName = "fusebridge"

// Load reads the given .env files, or ./.env if none are given and it
// exists. Process environment variables take precedence over file values.
func Load(files ...string) (*Config, error) {
	values, err := readFiles(files)
	if err != nil {
		return nil, err
	}
	env := lookup(values)

	cfg := &Config{
		LogLevel:   logging.LevelInfo,
		LogFile:    env.str("LOG_FILE", ""),
		LogNoColor: env.boolean("LOG_NO_COLOR", false),
		FSName:     env.str("FUSEBRIDGE_FSNAME", defaultFSName),
		AllowOther: env.boolean("FUSEBRIDGE_ALLOW_OTHER", false),
		Debug:      env.boolean("FUSEBRIDGE_DEBUG", false),
	}

	if name := env.str("LOG_LEVEL", ""); name != "" {
		level, ok := logging.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q", name)
		}
		cfg.LogLevel = level
	}
	if env.str("FUSE_DEBUG", "") != "" && cfg.LogLevel < logging.LevelDebug {
		cfg.LogLevel = logging.LevelDebug
	}

	cfg.Driver = DefaultDriver()
	if name := env.str("FUSEBRIDGE_DRIVER", ""); name != "" {
		if cfg.Driver, err = ParseDriver(name); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoggingOptions returns the sink settings for logging.Configure.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:   c.LogLevel,
		File:    c.LogFile,
		NoColor: c.LogNoColor,
	}
}

func readFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		files = []string{".env"}
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("(config-godotenv) %w", err)
	}
	return values, nil
}

// lookup resolves a key from the process environment first, then from the
// values read from files.
type lookup map[string]string

func (l lookup) str(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	if value := l[key]; value != "" {
		return value
	}
	return defaultValue
}

func (l lookup) boolean(key string, defaultValue bool) bool {
	value := l.str(key, "")
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	v := strings.ToLower(value)
	return v == "yes" || v == "on"
}
