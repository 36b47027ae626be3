package trap

import (
	"unsafe"

	"github.com/mematrix/vos/kernel/cpu"
)

// Handler is the high-level trap handler contract. It is invoked once per
// delegated trap with the captured resume pc, fault value, cause code and
// interrupted status, plus the frame of the interrupted context and its hart
// info. It must return the pc to resume at: the original pc (retry), the pc
// advanced past a handled synchronous trap, or an address belonging to a
// different frame if the handler switched contexts. It must not modify the
// scratch register; the dispatcher re-reads it after the call to pick up a
// context switch.
type Handler func(pc, tval uintptr, cause cpu.Cause, status cpu.Status, frame *Frame, hart *HartFrame) uintptr

var (
	// The registered high-level handler. A trap taken with no handler
	// installed is fatal for the hart.
	handler Handler

	// Hardware touch-points. The riscv64 wiring installs the real CSR
	// accessors and the assembly floating-point helpers; tests substitute
	// recording fakes.
	readSstatusFn   func() cpu.Status
	writeSstatusFn  func(cpu.Status)
	readSepcFn      func() uintptr
	writeSepcFn     func(uintptr)
	readScauseFn    func() cpu.Cause
	readStvalFn     func() uintptr
	readSscratchFn  func() uintptr
	writeSscratchFn func(uintptr)

	// fpSaveFn stores all 32 floating-point registers into the given slots.
	fpSaveFn func(*[NumRegs]uint64)

	// fpLoadFn loads all 32 floating-point registers from the given slots.
	fpLoadFn func(*[NumRegs]uint64)

	// fpZeroFn sets all 32 floating-point registers to architectural zero
	// without touching memory.
	fpZeroFn func()

	// haltFn parks the hart permanently.
	haltFn func()
)

// HandleTrap registers the high-level trap handler invoked for every trap
// delegated to supervisor mode.
func HandleTrap(h Handler) {
	handler = h
}

// currentFrame returns the frame of the context running on this hart, read
// from the scratch register.
func currentFrame() *Frame {
	return (*Frame)(unsafe.Pointer(readSscratchFn()))
}

// dispatch is the supervisor-mode trap dispatcher. The assembly vector has
// already saved the 31 general registers into the current frame, restored the
// scratch register to hold the frame pointer and switched onto this hart's
// trap stack; dispatch completes the state capture, forwards the trap to the
// registered handler and prepares the exit path. The general registers are
// restored by the assembly after dispatch returns.
func dispatch() {
	frame := currentFrame()

	// Save the floating-point registers only if they were modified since
	// the last save. Registers untouched since the last clean mark are
	// never re-saved.
	status := readSstatusFn()
	if fs := status.FS(); fs == cpu.FSDirty {
		fpSaveFn(&frame.Fregs)
		writeSstatusFn(status.WithFS(cpu.FSClean))
		// The slots were just written back, so they are current again.
		frame.FP = FPClean
	} else {
		frame.FP = fpStateOf(status)
	}

	pc := readSepcFn()
	tval := readStvalFn()
	cause := readScauseFn()

	if handler == nil {
		haltFn()
		return
	}
	resumePC := handler(pc, tval, cause, status, frame, frame.Hart)

	writeSepcFn(resumePC)

	// The handler may have switched contexts; re-read the scratch register
	// to find the frame the assembly will restore from.
	current := currentFrame()
	exitStatus := readSstatusFn()
	if exitStatus.FS() == cpu.FSDirty {
		fpLoadFn(&current.Fregs)
		writeSstatusFn(exitStatus.WithFS(cpu.FSClean))
	}
}
