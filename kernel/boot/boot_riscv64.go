package boot

import (
	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/kfmt"
	"github.com/mematrix/vos/kernel/kmain"
	"github.com/mematrix/vos/kernel/mem"
	"github.com/mematrix/vos/kernel/trap"
)

func init() {
	writeMstatusFn = cpu.WriteMstatus
	writeMepcFn = cpu.WriteMepc
	writeMtvecFn = cpu.WriteMtvec
	writeMedelegFn = cpu.WriteMedeleg
	writeMidelegFn = cpu.WriteMideleg
	writeMcounterenFn = cpu.WriteMcounteren
	writeMenvcfgFn = cpu.WriteMenvcfg
	writePmpcfg0Fn = cpu.WritePmpcfg0
	writePmpaddr0Fn = cpu.WritePmpaddr0
	writeSstatusFn = cpu.WriteSstatus
	writeSepcFn = cpu.WriteSepc
	writeStvecFn = cpu.WriteStvec
	writeSieFn = cpu.WriteSie
	writeSatpFn = cpu.WriteSatp
	sfenceFn = cpu.SFenceVMA
	haltFn = cpu.Halt
}

// bootEntry is the link-time entry point: the firmware jumps here at reset in
// machine mode with the hart id in A0 and the device tree address in A1. It
// parks every hart but the boot hart, switches onto the boot stack, calls
// machineInit and executes mret into machineRoot.
func bootEntry()

// machineRoot is the machine-level initializer phase, entered by the first
// mret. It calls machineInitializer, stages the descent with the returned
// translation root and executes sret into supervisorEnter.
func machineRoot()

// machineRootAddr returns the address the first mret lands at.
func machineRootAddr() uintptr

// supervisorEnter is the first supervisor-mode instruction. It re-anchors the
// stack pointer and calls supervisorMain.
func supervisorEnter()

// supervisorEnterAddr returns the address sret lands at.
func supervisorEnterAddr() uintptr

// readGP returns the global pointer register established by the entry code.
func readGP() uintptr

// Kernel image boundaries fixed by the link descriptor.
func textStart() uintptr
func textEnd() uintptr
func rodataStart() uintptr
func rodataEnd() uintptr
func dataStart() uintptr
func dataEnd() uintptr
func bssStart() uintptr
func bssEnd() uintptr
func heapStart() uintptr
func heapEnd() uintptr
func stackStart() uintptr
func stackEnd() uintptr

var (
	// bootDTB records the device tree blob address handed over by the
	// firmware. Written once at machine level on the boot hart.
	bootDTB uintptr

	// bootTree is parsed in place from the firmware blob; package storage
	// keeps the machine phase free of heap allocation.
	bootTree fdt.Tree
)

// machineInit is the Go half of the setup phase, called from bootEntry.
func machineInit(hartID uint64, dtb uintptr) {
	bootDTB = dtb
	machineSetup(hartID, imageLayout(), trap.MachineVectorAddr(), machineRootAddr())
}

// machineInitializer is the machine-level initializer: it discovers RAM from
// the device tree, builds the boot address space and returns the descriptor
// the descent installs. Called from machineRoot while translation is still
// off, so the blob is readable at its physical address.
func machineInitializer() uint64 {
	var tree *fdt.Tree
	if bootDTB != 0 {
		if err := fdt.Parse(bootDTB, &bootTree); err == nil {
			tree = &bootTree
		}
	}

	satp, err := buildBootAddressSpace(tree)
	if err != nil {
		kfmt.Panic(err)
	}
	return satp
}

// descendToSupervisor stages the supervisor descent; the assembly executes
// sret right after it returns. Called from machineRoot.
func descendToSupervisor(satp uint64) {
	supervisorDescend(satp, supervisorEnterAddr(), trap.VectorAddr())
}

// supervisorMain is called from supervisorEnter on the kernel stack. It hands
// over to the kernel proper.
func supervisorMain() {
	kmain.SetBootArgs(trap.HartID(), bootDTB, readGP())
	kmain.Kmain()

	// Kmain does not return; if it does there is nothing left to run.
	cpu.Halt()
}

// imageLayout collects the linker-provided region boundaries.
func imageLayout() mem.BootLayout {
	return mem.BootLayout{
		Text:   mem.Region{Start: textStart(), End: textEnd()},
		Rodata: mem.Region{Start: rodataStart(), End: rodataEnd()},
		Data:   mem.Region{Start: dataStart(), End: dataEnd()},
		BSS:    mem.Region{Start: bssStart(), End: bssEnd()},
		Heap:   mem.Region{Start: heapStart(), End: heapEnd()},
		Stack:  mem.Region{Start: stackStart(), End: stackEnd()},
	}
}
