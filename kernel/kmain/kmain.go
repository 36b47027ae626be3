// Package kmain contains the supervisor-mode kernel entry point: it probes
// the hardware, arms the trap machinery and settles into the idle loop that
// the timer interrupts out of. The descent installed the boot address space
// before handing over, so Kmain already runs under translation.
package kmain

import (
	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/hal"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/kfmt"
	"github.com/mematrix/vos/kernel/trap"
)

// defaultTimebase is the qemu virt tick rate, used when the device tree does
// not report one.
const defaultTimebase = 10000000

var (
	errUnexpectedTrap = &kernel.Error{Module: "kmain", Message: "unexpected trap"}

	// The hardware-touching steps go through function variables so the
	// entry sequence can be exercised by tests on any architecture.
	installFrameFn     func(*trap.Frame)
	armTimerFn         func(uint64)
	enableInterruptsFn func()
	idleFn             func()

	// deviceTree is parsed in place from the firmware blob; package storage
	// keeps the entry sequence free of heap allocation.
	deviceTree fdt.Tree

	// tickInterval is the timer period in timebase ticks, fixed once the
	// hart is initialized.
	tickInterval uint64

	// idleFrame is the context the boot flow adopts before interrupts are
	// enabled; the first timer tick saves into it.
	idleFrame trap.Frame
)

var bootArgs struct {
	hartID uint64
	dtb    uintptr
	gp     uintptr
}

// SetBootArgs records the environment the boot path discovered before
// handing over to Kmain.
func SetBootArgs(hartID uint64, dtb, gp uintptr) {
	bootArgs.hartID = hartID
	bootArgs.dtb = dtb
	bootArgs.gp = gp
}

// Kmain is the supervisor-mode kernel entry point. It is invoked on the boot
// hart with traps delegated but interrupts still masked, and it does not
// return.
func Kmain() {
	kfmt.Printf("[kmain] starting on hart %d\n", bootArgs.hartID)

	var tree *fdt.Tree
	if bootArgs.dtb != 0 {
		if err := fdt.Parse(bootArgs.dtb, &deviceTree); err != nil {
			kfmt.Printf("[kmain] ignoring device tree: %s\n", err.Message)
		} else {
			tree = &deviceTree
		}
	}

	hal.DetectHardware(tree)

	freq := uint64(defaultTimebase)
	if tree != nil {
		if f, ok := tree.TimebaseFrequency(); ok {
			freq = f
		}
	}

	hartFrame, err := trap.InitHart(bootArgs.hartID, freq, bootArgs.gp)
	if err != nil {
		kfmt.Panic(err)
	}
	tickInterval = trap.HartInfoOf(bootArgs.hartID).TickInterval()

	trap.HandleTrap(handleTrap)

	// Adopt the idle frame so the first trap has somewhere to save to, then
	// open the interrupt window and wait for work.
	idleFrame.Hart = hartFrame
	installFrameFn(&idleFrame)

	kfmt.Printf("[kmain] timebase %d Hz, tick every %d ticks\n", freq, tickInterval)
	armTimerFn(tickInterval)
	enableInterruptsFn()
	idleFn()
}

// handleTrap is the kernel's supervisor trap handler. Timer interrupts re-arm
// the next tick, environment calls from user contexts resume past the ecall
// instruction, and anything else is fatal.
func handleTrap(pc, tval uintptr, cause cpu.Cause, status cpu.Status, frame *trap.Frame, hart *trap.HartFrame) uintptr {
	switch cause {
	case cpu.IntCauseSTimer:
		armTimerFn(tickInterval)
		return pc
	case cpu.ExcEcallFromU:
		return pc + cpu.EcallInsnSize
	default:
		kfmt.Printf("[kmain] trap cause %x pc %x tval %x status %x\n",
			uint64(cause), pc, tval, uint64(status))
		frame.DumpTo(kfmt.Output())
		kfmt.Panic(errUnexpectedTrap)
		return pc
	}
}
