package trap

import (
	"unsafe"

	"github.com/mematrix/vos/kernel/cpu"
)

var (
	// switchFn restores the 31 general registers from the frame and
	// executes the hardware trap-return. Implemented in assembly; it never
	// returns.
	switchFn func(*Frame)
)

// Activate makes the given frame the current context on this hart and
// transfers control into it at its saved pc. This is the only path by which
// the scheduler activates any context, including resuming itself after
// becoming idle. Activate never returns to its caller.
//
// Floating-point state is resolved by a three-way policy derived from the
// frame's saved state: a context that never enabled the FPU skips the restore
// entirely; a context that enabled it but never touched it gets the registers
// zeroed directly, which is cheaper than loading meaningless saved zeros; any
// other context gets all 32 registers loaded from the frame.
func Activate(frame *Frame) {
	writeSscratchFn(uintptr(unsafe.Pointer(frame)))
	writeSepcFn(uintptr(frame.PC))

	switch frame.FP {
	case FPOff:
		// Nothing to restore.
	case FPInitial:
		fpZeroFn()
	default:
		fpLoadFn(&frame.Fregs)
		writeSstatusFn(readSstatusFn().WithFS(cpu.FSClean))
		frame.FP = FPClean
	}

	switchFn(frame)
	panic("trap: context switch returned")
}
