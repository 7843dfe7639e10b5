package trampoline

import (
	"unsafe"

	"fusebridge/filesystem"
	"fusebridge/internal/state"
)

// Slot identifies one entry of the native operations table.
type Slot uint32

// The values are shared with the C shim of the libfuse driver.
const (
	SlotGetattr Slot = 1 << iota
	SlotReaddir
	SlotOpen
	SlotRead
)

// Operations is the operations table for one filesystem type. A nil
// function is an absent slot.
type Operations struct {
	// FS names the filesystem type the table dispatches to.
	FS string

	Getattr func(path, statOut unsafe.Pointer) int32
	Readdir func(path unsafe.Pointer, fill FillFunc, offset int64, fi unsafe.Pointer) int32
	Open    func(path, fi unsafe.Pointer) int32
	Read    func(path, buf unsafe.Pointer, size uint64, offset int64, fi unsafe.Pointer) int32
}

// NewOperations builds the table whose trampolines dispatch to the FS
// instance in the registry.
func NewOperations[FS filesystem.Filesystem]() *Operations {
	return &Operations{
		FS:      state.TypeName[FS](),
		Getattr: Getattr[FS],
		Readdir: Readdir[FS],
		Open:    Open[FS],
		Read:    Read[FS],
	}
}

// Slots returns the set of populated slots.
func (o *Operations) Slots() Slot {
	var s Slot
	if o.Getattr != nil {
		s |= SlotGetattr
	}
	if o.Readdir != nil {
		s |= SlotReaddir
	}
	if o.Open != nil {
		s |= SlotOpen
	}
	if o.Read != nil {
		s |= SlotRead
	}
	return s
}
