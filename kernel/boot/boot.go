// Package boot carries a hart from its machine-level reset state into the
// supervisor kernel. The sequence runs in two machine-level phases: the setup
// phase configures protection, delegation targets and counters and executes
// mret into the initializer phase, which builds the boot address space and
// stages the supervisor descent; sret then lands in the kernel entry under
// the new translation tables. The register writes go through package-level
// function variables so the sequencing logic can be exercised by tests on any
// architecture.
package boot

import (
	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/cpu"
	"github.com/mematrix/vos/kernel/hal/fdt"
	"github.com/mematrix/vos/kernel/kfmt"
	"github.com/mematrix/vos/kernel/mem"
)

// BootHartID is the hart that performs the single-threaded image setup. All
// other harts park at reset; waking them is a later concern.
const BootHartID = 0

var (
	memsetWordsFn = kernel.MemsetWords

	writeMstatusFn    func(cpu.Status)
	writeMepcFn       func(uintptr)
	writeMtvecFn      func(uintptr)
	writeMedelegFn    func(uint64)
	writeMidelegFn    func(uint64)
	writeMcounterenFn func(uint64)
	writeMenvcfgFn    func(uint64)
	writePmpcfg0Fn    func(uint64)
	writePmpaddr0Fn   func(uint64)

	writeSstatusFn func(cpu.Status)
	writeSepcFn    func(uintptr)
	writeStvecFn   func(uintptr)
	writeSieFn     func(uint64)
	writeSatpFn    func(uint64)
	sfenceFn       func()

	haltFn func()

	// frameAlloc hands out the page-table frames of the boot address space
	// from the heap region.
	frameAlloc mem.BootFrameAllocator
)

// machineSetup performs the one-time machine-level configuration on the boot
// hart and stages an mret into the machine-level initializer: interrupts stay
// disabled and the privilege level stays machine, giving the initializer a
// clean environment to build the boot address space in. Harts other than the
// boot hart are parked before anything is touched.
//
// The loader does not clear memory, so the BSS image is zeroed here, before
// any Go code that could read a package variable runs.
func machineSetup(hartID uint64, layout mem.BootLayout, machineVec, initializer uintptr) {
	if hartID != BootHartID {
		haltFn()
	}

	mem.SetLayout(layout)
	if size := layout.BSS.Size(); size != 0 {
		memsetWordsFn(layout.BSS.Start, 0, size>>mem.PointerShift)
	}

	// Without at least one matching protection entry, supervisor accesses
	// fault on machines that implement PMP. One NAPOT entry opens the whole
	// address space.
	writePmpaddr0Fn(cpu.PmpAddrFull)
	writePmpcfg0Fn(cpu.PmpCfgR | cpu.PmpCfgW | cpu.PmpCfgX | cpu.PmpCfgNAPOT)

	// Let supervisor mode read the cycle/time/instret counters directly and
	// arm its own timer via stimecmp.
	writeMcounterenFn(cpu.CounterEnableAll)
	writeMenvcfgFn(cpu.EnvcfgSTCE)

	writeMtvecFn(machineVec)

	// mret re-enters machine mode with interrupts off and the initializer as
	// the resume address.
	writeMstatusFn(cpu.StatusMPPMachine)
	writeMepcFn(initializer)
}

// buildBootAddressSpace identity-maps RAM and the kernel image under Sv39 and
// returns the address-space-root descriptor ready for installation. RAM is
// mapped writable first; the image regions then tighten the permissions of
// the pages they cover. Page-table frames come from the heap region.
func buildBootAddressSpace(tree *fdt.Tree) (uint64, *kernel.Error) {
	frameAlloc.Init(mem.Layout.Heap)
	mem.SetFrameAllocator(frameAlloc.AllocFrame)

	rt, err := mem.NewRootTable()
	if err != nil {
		return 0, err
	}

	if tree != nil {
		var mapErr *kernel.Error
		tree.VisitMemoryRegions(func(r mem.Region) {
			if mapErr == nil {
				mapErr = rt.MapRegion(r, mem.RW)
			}
		})
		if mapErr != nil {
			return 0, mapErr
		}
	}

	mappings := []struct {
		region mem.Region
		flags  uintptr
	}{
		{mem.Layout.Text, mem.RX},
		{mem.Layout.Rodata, mem.RO},
		{mem.Layout.Data, mem.RW},
		{mem.Layout.BSS, mem.RW},
		{mem.Layout.Heap, mem.RW},
		{mem.Layout.Stack, mem.RW},
		{mem.Region{Start: mem.Uart0Base, End: mem.Uart0Base + mem.PageSize}, mem.RW},
	}
	for _, m := range mappings {
		if m.region.Size() == 0 {
			continue
		}
		if err := rt.MapRegion(m.region, m.flags); err != nil {
			return 0, err
		}
	}

	kfmt.Printf("[boot] address space built, %d heap frames free\n", frameAlloc.Remaining())
	return rt.Satp(), nil
}

// supervisorDescend stages the transfer into supervisor mode after the
// initializer has produced the translation root: kernel entry status and
// resume address, trap delegation, supervisor interrupt enables and vector,
// then the translation root with a cache flush so the first supervisor
// instruction runs under the new tables. The caller executes sret after it
// returns; sret restores the staged interrupt-enable state, so the kernel
// entry runs with interrupts on.
func supervisorDescend(satp uint64, kernelEntry, vec uintptr) {
	writeSstatusFn(cpu.StatusSPP | cpu.StatusSPIE | cpu.FSInitial)
	writeSepcFn(kernelEntry)

	// Everything except the supervisor environment call is handled at
	// supervisor level; that one call stays behind as the machine service
	// channel.
	writeMedelegFn(cpu.DelegAllExceptions)
	writeMidelegFn(cpu.IntSSoft | cpu.IntSTimer | cpu.IntSExt)
	writeSieFn(cpu.IntSSoft | cpu.IntSTimer | cpu.IntSExt)
	writeStvecFn(vec)

	writeSatpFn(satp)
	sfenceFn()
}
