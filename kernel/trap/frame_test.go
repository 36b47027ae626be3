package trap

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/mem"
)

// The assembly entry and exit paths address the frame fields by fixed
// offsets; the Go struct layout must never drift from them.
func TestFrameLayoutMatchesEntryPath(t *testing.T) {
	var f Frame

	specs := []struct {
		name string
		got  uintptr
		exp  uintptr
	}{
		{"Regs", unsafe.Offsetof(f.Regs), frameRegsOffset},
		{"Fregs", unsafe.Offsetof(f.Fregs), frameFregsOffset},
		{"PC", unsafe.Offsetof(f.PC), framePCOffset},
		{"Hart", unsafe.Offsetof(f.Hart), frameHartOffset},
	}
	for specIndex, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("[spec %d] expected offset of %s to be %d; got %d", specIndex, spec.name, spec.exp, spec.got)
		}
	}

	var h HartFrame
	if unsafe.Offsetof(h.StackTop) != hartStackOffset ||
		unsafe.Offsetof(h.GP) != hartGPOffset ||
		unsafe.Offsetof(h.TP) != hartTPOffset {
		t.Error("hart frame field offsets drifted from the entry path constants")
	}
}

func TestTrapStackFillsExactlyOnePage(t *testing.T) {
	if got := unsafe.Sizeof(TrapStack{}); got != mem.PageSize {
		t.Fatalf("expected the trap stack block to occupy one page; got %d bytes", got)
	}
}

func TestFPStateOf(t *testing.T) {
	specs := []struct {
		status cpu.Status
		exp    FPState
	}{
		{cpu.FSOff, FPOff},
		{cpu.FSInitial, FPInitial},
		{cpu.FSClean, FPClean},
		{cpu.FSDirty, FPDirty},
	}

	for specIndex, spec := range specs {
		if got := fpStateOf(spec.status | cpu.StatusSPP); got != spec.exp {
			t.Errorf("[spec %d] expected state %d; got %d", specIndex, spec.exp, got)
		}
	}
}

func TestDumpTo(t *testing.T) {
	var f Frame
	f.Regs[RegSP] = 0x80280000
	f.PC = 0x80200abc

	var buf bytes.Buffer
	f.DumpTo(&buf)

	out := buf.String()
	if !strings.Contains(out, "sp =") || !strings.Contains(out, "80280000") {
		t.Errorf("expected the stack pointer in the dump; got %q", out)
	}
	if !strings.Contains(out, "pc =") || !strings.Contains(out, "80200abc") {
		t.Errorf("expected the pc in the dump; got %q", out)
	}
	if !strings.Contains(out, "t6 =") {
		t.Errorf("expected all 31 registers in the dump; got %q", out)
	}
}
