package trap

import (
	"testing"
	"unsafe"
)

func TestInitHart(t *testing.T) {
	hartFrame, err := InitHart(2, 10000000, 0x1234)
	if err != nil {
		t.Fatal(err)
	}

	ts := &trapStacks[2]
	if hartFrame != &ts.Frame {
		t.Fatal("expected the returned frame to live inside the hart's trap stack page")
	}
	if hartFrame.StackTop != uintptr(unsafe.Pointer(&ts.reserved)) {
		t.Error("expected the stack top to sit just below the info blocks")
	}
	if hartFrame.GP != 0x1234 {
		t.Errorf("expected gp %x; got %x", 0x1234, hartFrame.GP)
	}
	if hartFrame.TP != uintptr(unsafe.Pointer(&ts.Info)) {
		t.Error("expected tp to identify the hart's control block")
	}

	info := HartInfoOf(2)
	if info.HartID != 2 || info.Freq != 10000000 {
		t.Errorf("expected hart 2 at 10MHz; got hart %d at %d", info.HartID, info.Freq)
	}
	if got := info.TickInterval(); got != 100000 {
		t.Errorf("expected a tick every 100000 ticks; got %d", got)
	}
}

func TestInitHartRejectsOutOfRangeID(t *testing.T) {
	if _, err := InitHart(MaxHarts, 1, 0); err != errHartRange {
		t.Fatalf("expected errHartRange; got %v", err)
	}
}
