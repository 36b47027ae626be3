// Package mem provides the physical memory primitives the kernel builds on:
// page/frame arithmetic, the platform memory map, the boot-time page
// allocator and Sv39 page-table construction.
package mem

// Memory constants for the riscv64 architecture.
const (
	// PageSize is the page size in bytes.
	PageSize = uintptr(1) << PageShift

	// PageShift is the number of address bits covered by one page.
	PageShift = 12

	// PointerShift is the number of bits to shift a page table index left
	// to convert it to a byte offset.
	PointerShift = 3
)

// Frame describes a physical memory page, addressed by its page number.
type Frame uintptr

// Address returns the physical address of the frame.
func (f Frame) Address() uintptr {
	return uintptr(f) << PageShift
}

// FrameFromAddress returns the frame containing the given physical address.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame(physAddr >> PageShift)
}

// Page describes a virtual memory page, addressed by its page number.
type Page uintptr

// Address returns the virtual address of the page.
func (p Page) Address() uintptr {
	return uintptr(p) << PageShift
}

// PageFromAddress returns the page containing the given virtual address.
func PageFromAddress(virtAddr uintptr) Page {
	return Page(virtAddr >> PageShift)
}

// AlignUp rounds addr up to the next multiple of align, which must be a
// power of two.
func AlignUp(addr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}

// AlignDown rounds addr down to a multiple of align, which must be a power
// of two.
func AlignDown(addr, align uintptr) uintptr {
	return addr &^ (align - 1)
}
