package kmain

import (
	"unsafe"

	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/trap"
)

func init() {
	installFrameFn = installFrame
	armTimerFn = trap.SetTimerRelative
	enableInterruptsFn = cpu.EnableInterrupts

	// A parked hart still takes interrupts, so the trap path keeps running
	// out of the wfi loop.
	idleFn = cpu.Halt
}

func installFrame(frame *trap.Frame) {
	cpu.WriteSscratch(uintptr(unsafe.Pointer(frame)))
}
