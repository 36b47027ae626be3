package mem

import (
	"testing"
	"unsafe"
)

func TestBootFrameAllocator(t *testing.T) {
	buf := make([]byte, 4*PageSize)
	base := uintptr(unsafe.Pointer(&buf[0]))

	// Unaligned region bounds leave two whole pages inside.
	var alloc BootFrameAllocator
	alloc.Init(Region{Start: base + 1, End: base + 3*PageSize + 1})

	if got := alloc.Remaining(); got != 2 {
		t.Fatalf("expected 2 frames available; got %d", got)
	}

	// Dirty the backing memory; allocation must hand out zeroed frames.
	for i := range buf {
		buf[i] = 0xab
	}

	first, err := alloc.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}
	if first.Address() != AlignUp(base+1, PageSize) {
		t.Errorf("expected first frame at %x; got %x", AlignUp(base+1, PageSize), first.Address())
	}

	contents := unsafe.Slice((*byte)(unsafe.Pointer(first.Address())), PageSize)
	for i, b := range contents {
		if b != 0 {
			t.Fatalf("expected zeroed frame; byte %d is %x", i, b)
		}
	}

	second, err := alloc.AllocFrame()
	if err != nil {
		t.Fatal(err)
	}
	if second.Address() != first.Address()+PageSize {
		t.Errorf("expected consecutive frames; got %x after %x", second.Address(), first.Address())
	}

	if _, err := alloc.AllocFrame(); err != errBootAllocExhausted {
		t.Errorf("expected exhaustion error; got %v", err)
	}
	if got := alloc.Remaining(); got != 0 {
		t.Errorf("expected no frames remaining; got %d", got)
	}
}
