// Package trap implements the supervisor trap dispatcher, the machine-level
// service handler and the context switch engine. A context's full register
// state lives in a Frame; outside of a trap the supervisor scratch register
// always points at the frame of the context running on that hart.
package trap

import (
	"io"

	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/kfmt"
)

// General register indices into Frame.Regs. Slot 0 is the architectural zero
// register and is never saved or restored.
const (
	RegZero = iota
	RegRA
	RegSP
	RegGP
	RegTP
	RegT0
	RegT1
	RegT2
	RegS0
	RegS1
	RegA0
	RegA1
	RegA2
	RegA3
	RegA4
	RegA5
	RegA6
	RegA7
	RegS2
	RegS3
	RegS4
	RegS5
	RegS6
	RegS7
	RegS8
	RegS9
	RegS10
	RegS11
	RegT3
	RegT4
	RegT5
	RegT6

	// NumRegs is the number of general (and floating-point) register slots.
	NumRegs = 32
)

// FPState tracks the validity of a frame's floating-point slots. The hardware
// reports the same three states through the status register FS field; the
// frame carries the state explicitly so the restore policy does not depend on
// a hardware dirty bit.
type FPState uint64

const (
	// FPOff: the FPU was disabled at capture time; the slots hold garbage.
	FPOff FPState = iota

	// FPInitial: the FPU was enabled but never touched; every register is
	// architecturally zero and nothing was written to the frame.
	FPInitial

	// FPClean: the slots hold the registers as of the last save.
	FPClean

	// FPDirty: the registers were modified after the last save; the slots
	// are stale until the entry path writes them back.
	FPDirty
)

// fpStateOf derives the frame FP state from a status register value.
func fpStateOf(s cpu.Status) FPState {
	switch s.FS() {
	case cpu.FSOff:
		return FPOff
	case cpu.FSInitial:
		return FPInitial
	case cpu.FSClean:
		return FPClean
	default:
		return FPDirty
	}
}

// Frame is the in-memory snapshot of one context's full register state. The
// layout is fixed: the entry and exit assembly address the general slots at
// offsets 0-248, the floating-point slots at 256-504, the pc at 512 and the
// hart link at 520. One frame exists per schedulable context and is owned by
// exactly one hart at any time; ownership transfers only at context-switch
// boundaries.
type Frame struct {
	Regs  [NumRegs]uint64
	Fregs [NumRegs]uint64

	// PC is the address execution resumes at when this frame is activated.
	PC uint64

	// Hart links to the persistent per-hart info used to re-establish a
	// known-good kernel stack on trap entry.
	Hart *HartFrame

	// FP is the explicit floating-point slot state (see FPState).
	FP FPState
}

// Frame field offsets shared with the assembly entry/exit paths.
const (
	frameRegsOffset  = 0
	frameFregsOffset = 256
	framePCOffset    = 512
	frameHartOffset  = 520
)

// regNames follows the RISC-V ABI mnemonics, indexed like Frame.Regs.
var regNames = [NumRegs]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// DumpTo outputs the general register contents and the saved pc to w.
func (f *Frame) DumpTo(w io.Writer) {
	for i := RegRA; i+1 < NumRegs; i += 2 {
		kfmt.Fprintf(w, "%4s = %16x %4s = %16x\n", regNames[i], f.Regs[i], regNames[i+1], f.Regs[i+1])
	}
	kfmt.Fprintf(w, "%4s = %16x   pc = %16x\n", regNames[RegT6], f.Regs[RegT6], f.PC)
}

// HartFrame is the persistent per-hart info block reachable from every frame
// running on that hart. It is written once during per-hart setup and is
// read-only afterwards; the trap entry path loads all three values to switch
// onto a known-good kernel stack.
type HartFrame struct {
	// StackTop is the top of this hart's trap stack.
	StackTop uintptr

	// GP is the global-pointer value established by the linker script.
	GP uintptr

	// TP identifies this hart's control block (points at its CPUInfo).
	TP uintptr
}

// HartFrame field offsets shared with the assembly entry path.
const (
	hartStackOffset = 0
	hartGPOffset    = 8
	hartTPOffset    = 16
)
