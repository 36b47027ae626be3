package mem

import (
	"unsafe"

	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/cpu"
)

// PTE flag bits for the Sv39 translation scheme. A non-leaf entry carries
// only FlagValid; an entry with any of R/W/X set is a leaf at that level.
const (
	FlagValid    = uintptr(1 << 0)
	FlagRead     = uintptr(1 << 1)
	FlagWrite    = uintptr(1 << 2)
	FlagExec     = uintptr(1 << 3)
	FlagUser     = uintptr(1 << 4)
	FlagGlobal   = uintptr(1 << 5)
	FlagAccessed = uintptr(1 << 6)
	FlagDirty    = uintptr(1 << 7)

	// flagLeafMask identifies leaf entries.
	flagLeafMask = FlagRead | FlagWrite | FlagExec

	// RO, RW and RX are the common kernel mapping permissions, pre-set as
	// accessed (and dirty where writable) so the hardware never needs to
	// update the entry.
	RO = FlagRead | FlagAccessed
	RW = FlagRead | FlagWrite | FlagAccessed | FlagDirty
	RX = FlagRead | FlagExec | FlagAccessed | FlagDirty
)

const (
	// sv39Levels is the depth of the Sv39 translation tree.
	sv39Levels = 3

	// tableEntries is the number of entries per table page.
	tableEntries = PageSize >> PointerShift

	// pteFlagBits is the width of the flag field; the PPN starts above it.
	pteFlagBits = 10
)

var (
	errNoTableFrames = &kernel.Error{Module: "mem", Message: "out of frames for page tables"}
	errNotMapped     = &kernel.Error{Module: "mem", Message: "address not mapped"}
)

// Entry is a single Sv39 page table entry.
type Entry uintptr

// IsValid reports whether the entry is present.
func (e Entry) IsValid() bool {
	return e&Entry(FlagValid) != 0
}

// IsLeaf reports whether the entry maps memory rather than pointing to the
// next table level.
func (e Entry) IsLeaf() bool {
	return e&Entry(flagLeafMask) != 0
}

// Frame returns the physical frame the entry points at.
func (e Entry) Frame() Frame {
	return Frame(e >> pteFlagBits)
}

// SetFrame points the entry at frame with the given flags, marking it valid.
func (e *Entry) SetFrame(frame Frame, flags uintptr) {
	*e = Entry(uintptr(frame)<<pteFlagBits | flags | FlagValid)
}

// Table is one page of translation entries.
type Table [tableEntries]Entry

// frameAllocFn returns a zeroed physical frame for use as a page table. It is
// a package-level variable so tests can plug in their own allocator.
var frameAllocFn func() (Frame, *kernel.Error)

// SetFrameAllocator registers the allocator used when table construction
// needs a new intermediate table page.
func SetFrameAllocator(fn func() (Frame, *kernel.Error)) {
	frameAllocFn = fn
}

// vpn extracts the virtual page number field for the given level; level 2 is
// the root.
func vpn(virtAddr uintptr, level int) uintptr {
	return (virtAddr >> (PageShift + 9*uintptr(level))) & (tableEntries - 1)
}

// tableAt interprets the frame contents as a page table. The kernel runs
// with physical addresses identity-mapped so the frame address is directly
// dereferenceable.
func tableAt(frame Frame) *Table {
	return (*Table)(unsafe.Pointer(frame.Address()))
}

// RootTable anchors an Sv39 translation tree.
type RootTable struct {
	root Frame
}

// NewRootTable allocates an empty translation tree.
func NewRootTable() (*RootTable, *kernel.Error) {
	frame, err := frameAllocFn()
	if err != nil {
		return nil, err
	}
	return &RootTable{root: frame}, nil
}

// Map installs a 4KiB translation from page to frame with the given
// permission flags, allocating intermediate tables as needed.
func (rt *RootTable) Map(page Page, frame Frame, flags uintptr) *kernel.Error {
	virtAddr := page.Address()
	table := tableAt(rt.root)

	for level := sv39Levels - 1; level > 0; level-- {
		entry := &table[vpn(virtAddr, level)]
		if !entry.IsValid() {
			next, err := frameAllocFn()
			if err != nil {
				return errNoTableFrames
			}
			entry.SetFrame(next, 0)
		}
		table = tableAt(entry.Frame())
	}

	table[vpn(virtAddr, 0)].SetFrame(frame, flags)
	return nil
}

// MapRegion identity-maps every page of the region [start, end) with the
// given flags. The bounds are page-aligned outwards so partial pages at
// either end are covered.
func (rt *RootTable) MapRegion(r Region, flags uintptr) *kernel.Error {
	start := AlignDown(r.Start, PageSize)
	end := AlignUp(r.End, PageSize)

	for addr := start; addr < end; addr += PageSize {
		if err := rt.Map(PageFromAddress(addr), FrameFromAddress(addr), flags); err != nil {
			return err
		}
	}
	return nil
}

// Translate walks the tree and returns the physical address that virtAddr
// maps to.
func (rt *RootTable) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	table := tableAt(rt.root)

	for level := sv39Levels - 1; level > 0; level-- {
		entry := table[vpn(virtAddr, level)]
		if !entry.IsValid() {
			return 0, errNotMapped
		}
		if entry.IsLeaf() {
			// Superpage leaf: the low VPN fields become part of the
			// page offset.
			span := uintptr(1) << (PageShift + 9*uintptr(level))
			return entry.Frame().Address() + virtAddr&(span-1), nil
		}
		table = tableAt(entry.Frame())
	}

	entry := table[vpn(virtAddr, 0)]
	if !entry.IsValid() {
		return 0, errNotMapped
	}
	return entry.Frame().Address() + virtAddr&(PageSize-1), nil
}

// Satp returns the address translation register value that activates this
// tree under the Sv39 scheme.
func (rt *RootTable) Satp() uint64 {
	return cpu.MakeSatp(cpu.SatpModeSv39, 0, rt.root.Address())
}
