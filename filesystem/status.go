package filesystem

import (
	"math"

	"golang.org/x/sys/unix"
)

// FileStatus is the subset of a stat record this package reports: link
// count, size and mode. It is immutable once built.
type FileStatus struct {
	mode  Mode
	links uint64
	size  int64
}

// NewFileStatus builds a FileStatus. A mode without a file type and a
// negative size are rejected.
func NewFileStatus(mode Mode, links uint64, size int64) (FileStatus, error) {
	if !mode.Type().Valid() {
		return FileStatus{}, &UninitializedFieldError{Field: "mode"}
	}
	if size < 0 {
		return FileStatus{}, &OutOfRangeError{Value: size, Min: 0, Max: math.MaxInt64}
	}
	return FileStatus{mode: mode, links: links, size: size}, nil
}

func (s FileStatus) Mode() Mode    { return s.mode }
func (s FileStatus) Links() uint64 { return s.links }
func (s FileStatus) Size() int64   { return s.size }

// Fill overwrites st with this status. Every field not carried by
// FileStatus is zeroed.
func (s FileStatus) Fill(st *unix.Stat_t) {
	*st = unix.Stat_t{}
	setUnsigned(&st.Nlink, s.links)
	setUnsigned(&st.Mode, uint64(s.mode.raw))
	st.Size = s.size
}

// StatusFromStat reads back the fields Fill writes. The Go drivers use it to
// turn the record filled by the getattr trampoline into node attributes.
func StatusFromStat(st *unix.Stat_t) FileStatus {
	return FileStatus{
		mode:  Mode{raw: uint32(st.Mode)},
		links: uint64(st.Nlink),
		size:  st.Size,
	}
}

// The width of stat fields differs between platforms.
func setUnsigned[T ~uint16 | ~uint32 | ~uint64](dst *T, v uint64) {
	*dst = T(v)
}
