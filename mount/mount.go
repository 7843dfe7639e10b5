// Package mount serves a filesystem.Filesystem at a mount point.
//
// Run registers the filesystem, builds the operations table for its type and
// blocks in the selected driver until the filesystem is unmounted. Because
// native callbacks find the filesystem by its type, only one instance of a
// given type can be mounted at a time.
package mount

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"fusebridge/filesystem"
	"fusebridge/internal/config"
	"fusebridge/internal/cstr"
	bazilfs "fusebridge/internal/fs"
	"fusebridge/internal/libfuse"
	"fusebridge/internal/logging"
	"fusebridge/internal/pathfs"
	"fusebridge/internal/state"
	"fusebridge/internal/trampoline"

	"github.com/google/uuid"
)

var (
	logger = logging.GetLogger().WithPrefix("mount")

	// ErrInvalidMountPoint is returned when the mount point is not valid UTF-8.
	ErrInvalidMountPoint = errors.New("mount point is not valid UTF-8")
)

// Driver selects the FUSE implementation that serves the mount.
type Driver = config.Driver

const (
	// DriverLibfuse runs the native libfuse3 event loop through cgo.
	DriverLibfuse = config.DriverLibfuse
	// DriverBazil speaks the kernel protocol with bazil.org/fuse.
	DriverBazil = config.DriverBazil
	// DriverGoFuse speaks the kernel protocol with hanwen/go-fuse.
	DriverGoFuse = config.DriverGoFuse
)

// DefaultDriver is libfuse in cgo builds and bazil otherwise.
func DefaultDriver() Driver {
	return config.DefaultDriver()
}

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	return config.ParseDriver(name)
}

type settings struct {
	driver  Driver
	program string
	ctx     context.Context
}

// Option configures Run.
type Option func(*settings)

// WithDriver selects the driver. The default is DefaultDriver().
func WithDriver(d Driver) Option {
	return func(s *settings) { s.driver = d }
}

// WithProgram sets the program name passed as the first native argument.
func WithProgram(name string) Option {
	return func(s *settings) { s.program = name }
}

// WithContext unmounts the filesystem when ctx is done. The libfuse driver
// ignores it and unmounts on signals only.
func WithContext(ctx context.Context) Option {
	return func(s *settings) { s.ctx = ctx }
}

func newSettings(opts []Option) *settings {
	s := &settings{
		driver:  DefaultDriver(),
		program: filepath.Base(os.Args[0]),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildArgs assembles the native argument vector. The forced flags keep the
// event loop in the foreground and single-threaded, and unmount the
// filesystem when the process exits.
func BuildArgs(program string, args []string, mountPoint string) []string {
	argv := make([]string, 0, len(args)+6)
	argv = append(argv, program)
	argv = append(argv, args...)
	argv = append(argv, "-f", "-s", "-o", "auto_unmount", mountPoint)
	return argv
}

// Run mounts fs at mountPoint and blocks until it is unmounted. args are
// extra native arguments such as "-o allow_other".
func Run[FS filesystem.Filesystem](fs FS, mountPoint string, args []string, opts ...Option) error {
	s := newSettings(opts)

	if !utf8.ValidString(mountPoint) {
		return fmt.Errorf("%w: %q", ErrInvalidMountPoint, mountPoint)
	}
	switch s.driver {
	case DriverLibfuse, DriverBazil, DriverGoFuse:
	default:
		return fmt.Errorf("unknown driver %q", s.driver)
	}

	argv := BuildArgs(s.program, args, mountPoint)
	encoded, err := cstr.Argv(argv)
	if err != nil {
		return fmt.Errorf("invalid native arguments: %w", err)
	}

	session := uuid.New()
	logger.Info("Session %s: mounting %s at %s (driver %s)", session, state.TypeName[FS](), mountPoint, s.driver)
	logger.Debug("Session %s: arguments %q", session, argv)

	state.Register(fs)
	ops := trampoline.NewOperations[FS]()

	switch s.driver {
	case DriverLibfuse:
		err = libfuse.Main(ops, encoded)
	case DriverBazil:
		err = serveGo(s.ctx, argv, mountPoint, bazilfs.NewBridgeFS(trampoline.NewCaller(ops)))
	case DriverGoFuse:
		err = serveGo(s.ctx, argv, mountPoint, pathfs.NewBridgeFS(trampoline.NewCaller(ops)))
	}

	if err != nil {
		logger.Error("Session %s: %v", session, err)
		return err
	}
	logger.Info("Session %s: unmounted", session)
	return nil
}

type server interface {
	Serve(ctx context.Context, mountPoint string, opts config.MountOptions) error
}

// serveGo runs a pure-Go driver until unmount, SIGINT or SIGTERM.
func serveGo(ctx context.Context, argv []string, mountPoint string, srv server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, mountPoint, config.ParseMountArgs(argv[1:]))
}
