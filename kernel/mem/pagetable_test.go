package mem

import (
	"testing"
	"unsafe"

	"github.com/mematrix/vos/kernel"
)

// testFrameAllocator serves page-aligned frames carved out of a heap buffer
// so table walks can dereference frame addresses on the test host.
type testFrameAllocator struct {
	buf   []byte
	next  uintptr
	end   uintptr
	count int
	fail  bool
}

func newTestFrameAllocator(frames int) *testFrameAllocator {
	a := &testFrameAllocator{buf: make([]byte, uintptr(frames+1)*PageSize)}
	base := uintptr(unsafe.Pointer(&a.buf[0]))
	a.next = AlignUp(base, PageSize)
	a.end = a.next + uintptr(frames)*PageSize
	return a
}

func (a *testFrameAllocator) alloc() (Frame, *kernel.Error) {
	if a.fail || a.next >= a.end {
		return 0, &kernel.Error{Module: "mem_test", Message: "no frames"}
	}
	addr := a.next
	a.next += PageSize
	a.count++
	return FrameFromAddress(addr), nil
}

func TestRootTableMapAndTranslate(t *testing.T) {
	defer func(orig func() (Frame, *kernel.Error)) { frameAllocFn = orig }(frameAllocFn)

	alloc := newTestFrameAllocator(16)
	frameAllocFn = alloc.alloc

	rt, err := NewRootTable()
	if err != nil {
		t.Fatal(err)
	}

	specs := []struct {
		virtAddr uintptr
		physAddr uintptr
		flags    uintptr
	}{
		{0x80200000, 0x80200000, RX},
		{0x80201000, 0x80201000, RW},
		// Far apart in the address space; forces fresh intermediate tables.
		{0x10000000, 0x10000000, RW},
	}

	for specIndex, spec := range specs {
		if err := rt.Map(PageFromAddress(spec.virtAddr), FrameFromAddress(spec.physAddr), spec.flags); err != nil {
			t.Fatalf("[spec %d] map failed: %v", specIndex, err)
		}
	}

	for specIndex, spec := range specs {
		got, err := rt.Translate(spec.virtAddr + 0x123)
		if err != nil {
			t.Fatalf("[spec %d] translate failed: %v", specIndex, err)
		}
		if want := spec.physAddr + 0x123; got != want {
			t.Errorf("[spec %d] expected translation %x; got %x", specIndex, want, got)
		}
	}

	if _, err := rt.Translate(0xdeadbeef000); err != errNotMapped {
		t.Errorf("expected errNotMapped for an unmapped address; got %v", err)
	}
}

func TestRootTableMapAllocFailure(t *testing.T) {
	defer func(orig func() (Frame, *kernel.Error)) { frameAllocFn = orig }(frameAllocFn)

	alloc := newTestFrameAllocator(4)
	frameAllocFn = alloc.alloc

	rt, err := NewRootTable()
	if err != nil {
		t.Fatal(err)
	}

	alloc.fail = true
	if err := rt.Map(PageFromAddress(0x80200000), FrameFromAddress(0x80200000), RW); err != errNoTableFrames {
		t.Errorf("expected errNoTableFrames; got %v", err)
	}
}

func TestRootTableMapRegion(t *testing.T) {
	defer func(orig func() (Frame, *kernel.Error)) { frameAllocFn = orig }(frameAllocFn)

	alloc := newTestFrameAllocator(16)
	frameAllocFn = alloc.alloc

	rt, err := NewRootTable()
	if err != nil {
		t.Fatal(err)
	}

	// Unaligned bounds must be covered by whole pages.
	region := Region{Start: 0x80200010, End: 0x80202010}
	if err := rt.MapRegion(region, RW); err != nil {
		t.Fatal(err)
	}

	for _, virtAddr := range []uintptr{0x80200000, 0x80201000, 0x80202000} {
		got, err := rt.Translate(virtAddr)
		if err != nil {
			t.Fatalf("expected %x to be mapped: %v", virtAddr, err)
		}
		if got != virtAddr {
			t.Errorf("expected identity translation for %x; got %x", virtAddr, got)
		}
	}

	if _, err := rt.Translate(0x80203000); err != errNotMapped {
		t.Errorf("expected page past the region to be unmapped; got %v", err)
	}
}

func TestRootTableSatp(t *testing.T) {
	defer func(orig func() (Frame, *kernel.Error)) { frameAllocFn = orig }(frameAllocFn)

	alloc := newTestFrameAllocator(2)
	frameAllocFn = alloc.alloc

	rt, err := NewRootTable()
	if err != nil {
		t.Fatal(err)
	}

	satp := rt.Satp()
	if mode := satp >> 60; mode != 8 {
		t.Errorf("expected Sv39 mode field 8; got %d", mode)
	}
	if ppn := satp & ((1 << 44) - 1); ppn != uint64(rt.root) {
		t.Errorf("expected root ppn %x; got %x", uint64(rt.root), ppn)
	}
}

func TestEntryEncoding(t *testing.T) {
	var e Entry
	if e.IsValid() {
		t.Error("zero entry should be invalid")
	}

	e.SetFrame(Frame(0x80200), RW)
	if !e.IsValid() {
		t.Error("expected entry to be valid after SetFrame")
	}
	if !e.IsLeaf() {
		t.Error("expected RW entry to be a leaf")
	}
	if got := e.Frame(); got != Frame(0x80200) {
		t.Errorf("expected frame %x; got %x", Frame(0x80200), got)
	}

	var inner Entry
	inner.SetFrame(Frame(0x80201), 0)
	if inner.IsLeaf() {
		t.Error("pointer entry without R/W/X must not be a leaf")
	}
}
