package mem

import (
	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/sync"
)

var errBootAllocExhausted = &kernel.Error{Module: "mem", Message: "boot allocator exhausted"}

// memsetWordsFn zero-fills allocated frames; a package-level variable so
// tests can observe or stub the fill.
var memsetWordsFn = kernel.MemsetWords

// BootFrameAllocator hands out physical frames from a fixed region by
// bumping a watermark. Frames are never returned; the allocator serves the
// boot path, where every allocation is permanent kernel structure.
type BootFrameAllocator struct {
	lock sync.Spinlock
	next uintptr
	end  uintptr
}

// Init prepares the allocator over region, shrunk inwards to whole pages.
func (a *BootFrameAllocator) Init(region Region) {
	a.next = AlignUp(region.Start, PageSize)
	a.end = AlignDown(region.End, PageSize)
}

// AllocFrame returns the next free frame, zero-filled.
func (a *BootFrameAllocator) AllocFrame() (Frame, *kernel.Error) {
	a.lock.Acquire()
	if a.next >= a.end {
		a.lock.Release()
		return 0, errBootAllocExhausted
	}

	addr := a.next
	a.next += PageSize
	a.lock.Release()

	memsetWordsFn(addr, 0, PageSize>>PointerShift)
	return FrameFromAddress(addr), nil
}

// Remaining returns the number of frames still available.
func (a *BootFrameAllocator) Remaining() uintptr {
	if a.next >= a.end {
		return 0
	}
	return (a.end - a.next) >> PageShift
}
