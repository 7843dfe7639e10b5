package filesystem

import (
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// FileType is the file-type tag of a mode word. Its values are the native
// S_IF* bit patterns.
type FileType uint32

const (
	BlockDevice     = FileType(unix.S_IFBLK)
	CharacterDevice = FileType(unix.S_IFCHR)
	Fifo            = FileType(unix.S_IFIFO)
	RegularFile     = FileType(unix.S_IFREG)
	Directory       = FileType(unix.S_IFDIR)
	SymbolicLink    = FileType(unix.S_IFLNK)
	Socket          = FileType(unix.S_IFSOCK)
)

// FileTypes lists every file type in a fixed order.
var FileTypes = []FileType{
	BlockDevice,
	CharacterDevice,
	Fifo,
	RegularFile,
	Directory,
	SymbolicLink,
	Socket,
}

const (
	typeMask       = uint32(unix.S_IFMT)
	permissionMask = uint32(0o777)
	setuidBit      = uint32(unix.S_ISUID)
	setgidBit      = uint32(unix.S_ISGID)
	stickyBit      = uint32(unix.S_ISVTX)
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	for _, known := range FileTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t FileType) String() string {
	switch t {
	case BlockDevice:
		return "block device"
	case CharacterDevice:
		return "character device"
	case Fifo:
		return "fifo"
	case RegularFile:
		return "regular file"
	case Directory:
		return "directory"
	case SymbolicLink:
		return "symbolic link"
	case Socket:
		return "socket"
	default:
		return fmt.Sprintf("FileType(%#o)", uint32(t))
	}
}

// Permissions holds the rwx bits of a mode word, 0 through 0o777. The only
// way to obtain one is NewPermissions or MustPermissions.
type Permissions struct {
	bits uint16
}

// MaxPermissions is the largest valid permission value.
const MaxPermissions = 0o777

// NewPermissions validates value and returns it as Permissions.
func NewPermissions(value uint16) (Permissions, error) {
	if value > MaxPermissions {
		return Permissions{}, &OutOfRangeError{
			Value: int64(value),
			Min:   0,
			Max:   MaxPermissions,
		}
	}
	return Permissions{bits: value}, nil
}

// MustPermissions is like NewPermissions but panics on an invalid value.
// It is meant for constants.
func MustPermissions(value uint16) Permissions {
	p, err := NewPermissions(value)
	if err != nil {
		panic(err)
	}
	return p
}

// Value returns the permission bits.
func (p Permissions) Value() uint16 { return p.bits }

func (p Permissions) String() string {
	return fmt.Sprintf("%#o", p.bits)
}

// Mode is a composed mode word: file type | permissions | setuid/setgid/sticky.
// The zero Mode carries no file type and is rejected by NewFileStatus.
type Mode struct {
	raw uint32
}

// ModeOption sets one of the optional special bits.
type ModeOption func(*uint32)

// WithSetuid sets the set-user-ID bit.
func WithSetuid() ModeOption {
	return func(m *uint32) { *m |= setuidBit }
}

// WithSetgid sets the set-group-ID bit.
func WithSetgid() ModeOption {
	return func(m *uint32) { *m |= setgidBit }
}

// WithSticky sets the sticky (S_ISVTX) bit.
func WithSticky() ModeOption {
	return func(m *uint32) { *m |= stickyBit }
}

// NewMode composes a mode word. The file type and permissions are required
// arguments so a mode can not be built without them, and an unknown file
// type is rejected.
func NewMode(fileType FileType, perm Permissions, opts ...ModeOption) (Mode, error) {
	if !fileType.Valid() {
		return Mode{}, &UnknownFileTypeError{Type: fileType}
	}
	m := uint32(fileType) | uint32(perm.bits)
	for _, opt := range opts {
		opt(&m)
	}
	return Mode{raw: m}, nil
}

// MustMode is like NewMode but panics on an unknown file type.
func MustMode(fileType FileType, perm Permissions, opts ...ModeOption) Mode {
	m, err := NewMode(fileType, perm, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// FileTypeOf extracts the file-type tag of a raw mode word.
func FileTypeOf(raw uint32) FileType {
	return FileType(raw & typeMask)
}

// Type returns the file-type tag.
func (m Mode) Type() FileType {
	return FileTypeOf(m.raw)
}

// Raw returns the native mode word.
func (m Mode) Raw() uint32 { return m.raw }

// Permissions returns the rwx bits.
func (m Mode) Permissions() Permissions {
	return Permissions{bits: uint16(m.raw & permissionMask)}
}

func (m Mode) Setuid() bool { return m.raw&setuidBit != 0 }
func (m Mode) Setgid() bool { return m.raw&setgidBit != 0 }
func (m Mode) Sticky() bool { return m.raw&stickyBit != 0 }

// FileMode converts m to the io/fs representation.
func (m Mode) FileMode() fs.FileMode {
	fm := fs.FileMode(m.Permissions().bits)
	switch m.Type() {
	case Directory:
		fm |= fs.ModeDir
	case SymbolicLink:
		fm |= fs.ModeSymlink
	case Fifo:
		fm |= fs.ModeNamedPipe
	case Socket:
		fm |= fs.ModeSocket
	case CharacterDevice:
		fm |= fs.ModeDevice | fs.ModeCharDevice
	case BlockDevice:
		fm |= fs.ModeDevice
	}
	if m.Setuid() {
		fm |= fs.ModeSetuid
	}
	if m.Setgid() {
		fm |= fs.ModeSetgid
	}
	if m.Sticky() {
		fm |= fs.ModeSticky
	}
	return fm
}

func (m Mode) String() string {
	return fmt.Sprintf("%s %#o", m.Type(), m.raw&^typeMask)
}

// ModeBuilder assembles a Mode at runtime, when the parts are not all known
// at the call site. Build fails if the file type or permissions were never
// set.
type ModeBuilder struct {
	fileType *FileType
	perm     *Permissions
	setuid   bool
	setgid   bool
	sticky   bool
}

func (b *ModeBuilder) FileType(t FileType) *ModeBuilder {
	b.fileType = &t
	return b
}

func (b *ModeBuilder) Permissions(p Permissions) *ModeBuilder {
	b.perm = &p
	return b
}

func (b *ModeBuilder) Setuid(v bool) *ModeBuilder {
	b.setuid = v
	return b
}

func (b *ModeBuilder) Setgid(v bool) *ModeBuilder {
	b.setgid = v
	return b
}

func (b *ModeBuilder) Sticky(v bool) *ModeBuilder {
	b.sticky = v
	return b
}

// Build returns the composed mode.
func (b *ModeBuilder) Build() (Mode, error) {
	if b.fileType == nil {
		return Mode{}, &UninitializedFieldError{Field: "file_type"}
	}
	if b.perm == nil {
		return Mode{}, &UninitializedFieldError{Field: "permissions"}
	}

	var opts []ModeOption
	if b.setuid {
		opts = append(opts, WithSetuid())
	}
	if b.setgid {
		opts = append(opts, WithSetgid())
	}
	if b.sticky {
		opts = append(opts, WithSticky())
	}
	return NewMode(*b.fileType, *b.perm, opts...)
}
